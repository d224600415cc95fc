package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check that the server answers",
		ArgsUsage: "[MESSAGE]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return fmt.Errorf("ping takes at most one argument")
			}
			args := []string{"PING"}
			if c.NArg() == 1 {
				args = append(args, c.Args().First())
			}
			return run(c, false, args...)
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one KEY")
			}
			return run(c, false, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command. The TTL may be given as a flag
// before the arguments or as a trailing --ex N / --px N pair.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key, optionally with a TTL",
		ArgsUsage: "KEY VALUE [--ex SECONDS | --px MILLISECONDS]",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "ex",
				Usage: "Expire after SECONDS",
			},
			&cli.Int64Flag{
				Name:  "px",
				Usage: "Expire after MILLISECONDS",
			},
		},
		Action: func(c *cli.Context) error {
			args := c.Args().Slice()
			if len(args) < 2 {
				return fmt.Errorf("set requires KEY and VALUE")
			}

			opts := ttlOptions{}
			if c.IsSet("ex") {
				opts.add("EX", c.Int64("ex"))
			}
			if c.IsSet("px") {
				opts.add("PX", c.Int64("px"))
			}
			if err := opts.parseTrailing(args[2:]); err != nil {
				return err
			}
			if err := opts.err(); err != nil {
				return err
			}

			req := append([]string{"SET", args[0], args[1]}, opts.args...)
			return run(c, false, req...)
		},
	}
}

type ttlOptions struct {
	args  []string
	count int
}

func (o *ttlOptions) add(name string, n int64) {
	o.args = append(o.args, name, strconv.FormatInt(n, 10))
	o.count++
}

func (o *ttlOptions) parseTrailing(tail []string) error {
	for i := 0; i < len(tail); i++ {
		name := strings.ToUpper(strings.TrimLeft(tail[i], "-"))
		if name != "EX" && name != "PX" {
			return fmt.Errorf("unexpected argument %q", tail[i])
		}
		if i+1 >= len(tail) {
			return fmt.Errorf("%s requires a value", tail[i])
		}
		n, err := strconv.ParseInt(tail[i+1], 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", tail[i], tail[i+1])
		}
		o.add(name, n)
		i++
	}
	return nil
}

func (o *ttlOptions) err() error {
	if o.count > 1 {
		return fmt.Errorf("--ex and --px are mutually exclusive")
	}
	return nil
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Usage:     "Delete keys",
		ArgsUsage: "KEY [KEY...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("del requires at least one KEY")
			}
			return run(c, false, append([]string{"DEL"}, c.Args().Slice()...)...)
		},
	}
}
