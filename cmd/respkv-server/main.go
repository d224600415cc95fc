package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "respkv-server",
		Usage:       "In-memory key-value server speaking RESP",
		Version:     buildinfo.Version,
		HideVersion: true,
		Flags:       serverFlags(),
		Action:      serve,
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "respkv-server %s\n", buildinfo.String())
					return nil
				},
			},
		},
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML configuration file",
			EnvVars: []string{"RESPKV_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: "RESP listen address (server.addr)",
		},
		&cli.BoolFlag{
			Name:  "aof",
			Usage: "Enable the append-only file (aof.enabled)",
		},
		&cli.StringFlag{
			Name:  "aof-path",
			Usage: "Append-only file path (aof.path)",
		},
		&cli.Uint64Flag{
			Name:  "maxmemory",
			Usage: "Memory budget in bytes, 0 disables eviction (memory.max_bytes)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error (log.level)",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Serve /metrics, /health and /version on this address (metrics.addr)",
		},
	}
}
