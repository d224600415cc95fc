package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/cli/repl"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

// ErrReply is returned when the server answered with an error reply. The
// reply itself has already been printed.
var ErrReply = errors.New("server returned an error")

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "respkv-cli",
		Usage:   "Command-line client for respkv-server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			GetCommand(),
			SetCommand(),
			DelCommand(),
			InfoCommand(),
			ConfigCommand(),
			AOFCommand(),
			DigestCommand(),
			RawCommand(),
		},
		Action: interactive,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address (host:port)",
			EnvVars: []string{"RESPKV_SERVER"},
			Value:   connection.DefaultAddr,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Dial and per-request timeout",
			Value: connection.DefaultTimeout,
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Print replies without quoting or type prefixes",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Timeout time.Duration
	Raw     bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Timeout: c.Duration("timeout"),
		Raw:     c.Bool("raw"),
	}
}

func formatter(c *cli.Context, forceRaw bool) output.Formatter {
	if forceRaw || c.Bool("raw") {
		return output.NewFormatter(output.FormatRaw)
	}
	return output.NewFormatter(output.FormatDefault)
}

func dial(c *cli.Context) (*connection.Client, error) {
	flags := ParseGlobalFlags(c)
	return connection.Dial(c.Context, flags.Server, flags.Timeout)
}

// run sends one command and prints the reply.
func run(c *cli.Context, rawOutput bool, args ...string) error {
	client, err := dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	return send(c, client, formatter(c, rawOutput), args)
}

func send(c *cli.Context, client *connection.Client, f output.Formatter, args []string) error {
	reply, err := client.Do(args...)
	if err != nil {
		return err
	}
	if err := f.Format(c.App.Writer, reply); err != nil {
		return err
	}
	if reply.IsError() {
		return ErrReply
	}
	return nil
}

// interactive runs the REPL when no subcommand is given. Arguments after
// the flags are sent as a single command instead.
func interactive(c *cli.Context) error {
	client, err := dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	f := formatter(c, false)
	if c.NArg() > 0 {
		return send(c, client, f, c.Args().Slice())
	}

	r := repl.New(repl.Config{
		Prompt:  client.Addr() + "> ",
		Input:   c.App.Reader,
		Output:  c.App.Writer,
		History: repl.NewHistory(repl.DefaultHistoryFile()),
		Execute: func(args []string) error {
			reply, err := client.Do(args...)
			if err != nil {
				return err
			}
			return f.Format(c.App.Writer, reply)
		},
	})
	if err := r.Run(); err != nil {
		return fmt.Errorf("interactive: %w", err)
	}
	return nil
}
