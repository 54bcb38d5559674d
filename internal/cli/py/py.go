// Package py implements the "cairn py" command.
package py

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pycairn/cairn/internal/core/config"
	"github.com/pycairn/cairn/internal/core/project"
	"github.com/pycairn/cairn/internal/core/python"
)

// NewPyCommand creates the cli.Command for "py".
func NewPyCommand() *cli.Command {
	return &cli.Command{
		Name:            "py",
		Usage:           "Run the project interpreter with the environment on its path",
		ArgsUsage:       "[args...]",
		SkipFlagParsing: true,
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

			code, err := proj.Py(c.Args().Slice())
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
