package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pycairn/cairn/internal/core/config"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.PyprojectName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := writeManifest(t, `
[project]
name = "demo"
version = "0.2.0"
requires-python = ">=3.9"

[tool.cairn]
python = "python3.12"
`)

	manifest, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "demo", manifest.ProjectName())
	require.NotNil(t, manifest.Project)
	assert.Equal(t, "0.2.0", manifest.Project.Version)
	assert.Equal(t, ">=3.9", manifest.Project.RequiresPython)
	assert.Equal(t, "python3.12", manifest.Python())
}

func TestLoad_DefaultsWithoutToolTable(t *testing.T) {
	t.Parallel()
	dir := writeManifest(t, `
[project]
name = "demo"
version = "0.1.0"
`)

	manifest, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPython, manifest.Python())
}

func TestLoad_MissingManifest(t *testing.T) {
	t.Parallel()
	manifest, err := config.Load(t.TempDir())
	require.NoError(t, err, "a missing manifest is not an error")
	assert.Equal(t, config.DefaultPython, manifest.Python())
	assert.Empty(t, manifest.ProjectName())
}

func TestLoad_MalformedManifest(t *testing.T) {
	t.Parallel()
	dir := writeManifest(t, `[project`)
	_, err := config.Load(dir)
	require.Error(t, err)
}
