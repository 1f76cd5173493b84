// Command phasecycle runs a red/green phase cycle and reports each time an
// observer sees the target phase.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "phasecycle",
		Usage: "toggle a red/green phase at randomized intervals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config `FILE`",
				EnvVars: []string{"PHASECYCLE_CONFIG"},
			},
			&cli.DurationFlag{Name: "min", Usage: "shortest cycle (overrides config)"},
			&cli.DurationFlag{Name: "max", Usage: "longest cycle (overrides config)"},
			&cli.DurationFlag{Name: "poll", Usage: "publisher poll interval (overrides config)"},
			&cli.StringFlag{Name: "discipline", Usage: "queue order, fifo or lifo (overrides config)"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "error, warn, info or debug"},
		},
		Commands: []*cli.Command{
			runCommand(),
			configCommand(),
		},
	}
}
