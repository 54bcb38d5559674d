// Package run implements the "cairn run" command.
package run

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/pycairn/cairn/internal/core/config"
	"github.com/pycairn/cairn/internal/core/project"
	"github.com/pycairn/cairn/internal/core/python"
)

// NewRunCommand creates the cli.Command for "run".
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:            "run",
		Usage:           "Run an installed entry point inside the project environment",
		ArgsUsage:       "<command> [args...]",
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			args := c.Args().Slice()
			if len(args) == 0 {
				return cli.Exit("Error: no command given. Try 'cairn run --list'.", 1)
			}

			proj, err := findProject(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			if args[0] == "--list" {
				return listEntryPoints(proj)
			}

			code, err := proj.Run(args[0], args[1:])
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			if code != 0 {
				return cli.Exit("", code)
			}
			return nil
		},
	}
}

func findProject(c *cli.Context) (*project.Project, error) {
	manifest, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	program := c.String("py")
	if program == "" {
		program = manifest.Python()
	}
	interpreter, err := python.Discover(program, program)
	if err != nil {
		return nil, err
	}
	return project.FindFromCwd(interpreter)
}

func listEntryPoints(proj *project.Project) error {
	points, err := proj.EntryPoints()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "Entry point\tCall target")
	for _, ep := range points {
		_, _ = fmt.Fprintf(w, "%s\t%s:%s\n", ep.Name, ep.Module, ep.Function)
	}
	return w.Flush()
}
