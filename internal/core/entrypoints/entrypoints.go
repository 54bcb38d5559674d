// Package entrypoints discovers console scripts from the metadata pip
// leaves in site-packages. Each *.dist-info or *.egg-info directory may
// carry an entry_points.txt whose [console_scripts] and [gui_scripts]
// sections map a command name to a "module:function" call target.
package entrypoints

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EntryPoint is one installed command: its name and the import path it
// resolves to.
type EntryPoint struct {
	Name     string
	Module   string
	Function string
	GUI      bool
}

// parseTarget splits a "module:function" call target.
func parseTarget(name, value string, gui bool) (EntryPoint, bool) {
	module, function, ok := strings.Cut(value, ":")
	if !ok {
		return EntryPoint{}, false
	}
	return EntryPoint{
		Name:     strings.TrimSpace(name),
		Module:   strings.TrimSpace(module),
		Function: strings.TrimSpace(function),
		GUI:      gui,
	}, true
}

// parseFile reads one entry_points.txt. The format is INI-like: bracketed
// section headers, "name = target" assignments, everything outside the two
// script sections ignored.
func parseFile(path string) (map[string]EntryPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	points := map[string]EntryPoint{}
	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		var gui bool
		switch section {
		case "console_scripts":
			gui = false
		case "gui_scripts":
			gui = true
		default:
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		ep, ok := parseTarget(name, strings.TrimSpace(value), gui)
		if !ok {
			continue
		}
		points[ep.Name] = ep
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// isDistroDir reports whether a directory entry looks like installed
// package metadata.
func isDistroDir(entry os.DirEntry) bool {
	if !entry.IsDir() {
		return false
	}
	name := entry.Name()
	return strings.HasSuffix(name, ".dist-info") || strings.HasSuffix(name, ".egg-info")
}

// Load collects every entry point under a site-packages directory, sorted
// by name. Metadata directories without entry_points.txt are skipped, as is
// anything unreadable.
func Load(sitePackages string) ([]EntryPoint, error) {
	entries, err := os.ReadDir(sitePackages)
	if err != nil {
		return nil, err
	}

	merged := map[string]EntryPoint{}
	for _, entry := range entries {
		if !isDistroDir(entry) {
			continue
		}
		path := filepath.Join(sitePackages, entry.Name(), "entry_points.txt")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		points, err := parseFile(path)
		if err != nil {
			continue
		}
		for name, ep := range points {
			merged[name] = ep
		}
	}

	list := make([]EntryPoint, 0, len(merged))
	for _, ep := range merged {
		list = append(list, ep)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Find returns the entry point with the given name, if installed.
func Find(sitePackages, name string) (EntryPoint, bool, error) {
	points, err := Load(sitePackages)
	if err != nil {
		return EntryPoint{}, false, err
	}
	for _, ep := range points {
		if ep.Name == name {
			return ep, true, nil
		}
	}
	return EntryPoint{}, false, nil
}
