package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// InfoCommand returns the info command. INFO is printed raw so its lines
// are readable.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show server information",
		Action: func(c *cli.Context) error {
			return run(c, true, "INFO")
		},
	}
}

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Read or change runtime parameters (maxmemory, appendfsync)",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Get a parameter",
				ArgsUsage: "PARAM",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("config get requires PARAM")
					}
					return run(c, false, "CONFIG", "GET", c.Args().First())
				},
			},
			{
				Name:      "set",
				Usage:     "Set a parameter",
				ArgsUsage: "PARAM VALUE",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("config set requires PARAM and VALUE")
					}
					return run(c, false, "CONFIG", "SET", c.Args().Get(0), c.Args().Get(1))
				},
			},
		},
	}
}

// AOFCommand returns the aof subcommand group.
func AOFCommand() *cli.Command {
	return &cli.Command{
		Name:  "aof",
		Usage: "Enable or disable the append-only file",
		Subcommands: []*cli.Command{
			{
				Name:  "enable",
				Usage: "Start appending writes to the AOF",
				Action: func(c *cli.Context) error {
					return run(c, false, "AOF", "ENABLE")
				},
			},
			{
				Name:  "disable",
				Usage: "Flush, fsync and close the AOF",
				Action: func(c *cli.Context) error {
					return run(c, false, "AOF", "DISABLE")
				},
			},
		},
	}
}

// DigestCommand returns the digest command.
func DigestCommand() *cli.Command {
	return &cli.Command{
		Name:  "digest",
		Usage: "Print the dataset digest (DEBUG DIGEST)",
		Action: func(c *cli.Context) error {
			return run(c, false, "DEBUG", "DIGEST")
		},
	}
}

// RawCommand returns the raw command, which sends its arguments verbatim.
func RawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Send any command",
		ArgsUsage: "COMMAND [ARG...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("raw requires a COMMAND")
			}
			return run(c, false, c.Args().Slice()...)
		},
	}
}
