// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that merges several
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, maps (flags)
//   - Dotenv: .env and .env.local are read into the process environment
//   - Watch Support: notification when the config file changes
//   - Type Safety: unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration files
//  4. Default values (the target struct's existing contents)
package confloader
