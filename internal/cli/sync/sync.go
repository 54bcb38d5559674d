// Package sync implements the "cairn sync" command.
package sync

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pycairn/cairn/internal/core/config"
	"github.com/pycairn/cairn/internal/core/project"
	"github.com/pycairn/cairn/internal/core/python"
	coresync "github.com/pycairn/cairn/internal/core/sync"
)

// NewSyncCommand creates the cli.Command for "sync".
func NewSyncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Install the locked packages into the project environment",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-default",
				Usage: "Skip the default dependency section",
			},
			&cli.StringSliceFlag{
				Name:    "extra",
				Aliases: []string{"e"},
				Usage:   "Also install the named extra section (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			manifest, err := config.Load(".")
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading %s: %v", config.PyprojectName, err), 1)
			}

			program := c.String("py")
			if program == "" {
				program = manifest.Python()
			}
			interpreter, err := python.Discover(program, program)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error discovering interpreter: %v", err), 1)
			}

			proj, err := project.FindFromCwd(interpreter)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			lock, err := proj.ReadLockFile()
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			synchronizer := coresync.New(lock)
			includeDefault := !c.Bool("no-default")
			extras := c.StringSlice("extra")
			if err := synchronizer.Sync(proj, includeDefault, extras); err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			fmt.Println("Environment synchronized with lock file.")
			return nil
		},
	}
}
