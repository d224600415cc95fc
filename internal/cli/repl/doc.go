// Package repl provides the interactive mode of respkv-cli.
//
// Each input line is split into arguments with shell-like quoting and sent
// to the server as one command; the reply is printed with the session's
// formatter. help lists the built-in words, history prints the recorded
// lines and exit or quit leaves the loop. History is persisted to a file
// between sessions.
package repl
