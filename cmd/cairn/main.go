package main

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/pycairn/cairn/internal/cli/list"
	"github.com/pycairn/cairn/internal/cli/py"
	"github.com/pycairn/cairn/internal/cli/run"
	"github.com/pycairn/cairn/internal/cli/self"
	synccmd "github.com/pycairn/cairn/internal/cli/sync"
)

// version is overridden at release time via -ldflags.
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "cairn",
		Usage:   "A Python project manager that installs from a hash-pinned lock file",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "py",
				Usage: "Python interpreter program to use (overrides pyproject.toml)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			synccmd.NewSyncCommand(),
			run.NewRunCommand(),
			py.NewPyCommand(),
			list.NewListCommand(),
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
