// Package list implements the "cairn list" command.
package list

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/pycairn/cairn/internal/core/lockfile"
	"github.com/pycairn/cairn/internal/core/project"
)

// NewListCommand creates the cli.Command for "list". It only reads the lock
// file, so it works without a usable interpreter.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Display the locked dependency graph",
		Action: func(c *cli.Context) error {
			root, err := project.Locate(".")
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			lock, err := lockfile.Load(root)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			sectionColor := color.New(color.FgCyan, color.Bold).SprintFunc()
			keyColor := color.New(color.FgWhite).SprintFunc()
			specColor := color.New(color.FgYellow).SprintFunc()
			markerColor := color.New(color.FgHiBlack).SprintFunc()

			for _, key := range lock.Keys() {
				dep, _ := lock.Get(key)
				fmt.Printf("%s %s\n", sectionColor(displayKey(key)), specColor(describePackage(dep.Python())))
				for _, edge := range dep.Edges() {
					line := fmt.Sprintf("  depends on %s", keyColor(edge.To.Key()))
					if edge.Marker != nil {
						line += " " + markerColor(fmt.Sprintf("; %s", edge.Marker.Expression()))
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}
}

// displayKey makes the reserved section keys readable.
func displayKey(key string) string {
	if key == lockfile.DefaultSectionKey {
		return "(default)"
	}
	return key
}

func describePackage(pkg *lockfile.PythonPackage) string {
	if pkg == nil {
		return "(section)"
	}
	spec := pkg.Specifier()
	desc := ""
	switch spec.Kind() {
	case lockfile.SpecifierVersion:
		desc = fmt.Sprintf("%s == %s", pkg.Name(), spec.Version())
		if source := spec.Source(); source != nil {
			desc += fmt.Sprintf(" (from %s)", source.Name())
		}
	case lockfile.SpecifierURL:
		desc = fmt.Sprintf("%s @ %s", pkg.Name(), spec.URL())
	case lockfile.SpecifierPath:
		desc = fmt.Sprintf("%s @ %s", pkg.Name(), spec.Path())
	case lockfile.SpecifierVcs:
		desc = fmt.Sprintf("%s @ %s@%s", pkg.Name(), spec.URL(), spec.Rev())
	}
	if hashes := pkg.Hashes(); hashes != nil && hashes.Len() > 0 {
		desc += fmt.Sprintf(" [%d hashes]", hashes.Len())
	}
	return desc
}
