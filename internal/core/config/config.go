// Package config reads the project manifest. Cairn keeps its own settings
// under [tool.cairn] in pyproject.toml, next to the standard [project]
// metadata table.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// PyprojectName is the manifest file name at the project root.
const PyprojectName = "pyproject.toml"

// DefaultPython is the interpreter program used when the manifest names
// none.
const DefaultPython = "python3"

// ProjectInfo is the subset of the [project] table cairn reads.
type ProjectInfo struct {
	Name           string `toml:"name"`
	Version        string `toml:"version"`
	RequiresPython string `toml:"requires-python,omitempty"`
}

// Settings holds the [tool.cairn] table.
type Settings struct {
	// Python names the interpreter program to discover on PATH, e.g.
	// "python3.12". Empty means DefaultPython.
	Python string `toml:"python,omitempty"`
}

// Pyproject is the parsed manifest.
type Pyproject struct {
	Project *ProjectInfo `toml:"project"`
	Tool    struct {
		Cairn *Settings `toml:"cairn"`
	} `toml:"tool"`
}

// Python returns the interpreter program the manifest asks for, falling
// back to DefaultPython.
func (p *Pyproject) Python() string {
	if p.Tool.Cairn != nil && p.Tool.Cairn.Python != "" {
		return p.Tool.Cairn.Python
	}
	return DefaultPython
}

// ProjectName returns the [project] name, or "" when absent.
func (p *Pyproject) ProjectName() string {
	if p.Project == nil {
		return ""
	}
	return p.Project.Name
}

// Load reads pyproject.toml from dirPath. A missing manifest is not an
// error; every setting then takes its default.
func Load(dirPath string) (*Pyproject, error) {
	data, err := os.ReadFile(filepath.Join(dirPath, PyprojectName))
	if errors.Is(err, os.ErrNotExist) {
		return &Pyproject{}, nil
	}
	if err != nil {
		return nil, err
	}

	var manifest Pyproject
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}
