package python

import (
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitePackagesDir(t *testing.T) {
	t.Parallel()
	version, err := semver.NewVersion("3.12.1")
	require.NoError(t, err)

	dir := sitePackagesDir(filepath.Join("__pypackages__", "cp312-cp312-linux_x86_64"), version)
	assert.Equal(t,
		filepath.Join("__pypackages__", "cp312-cp312-linux_x86_64", "lib", "python3.12", "site-packages"),
		dir)
}

func TestMarkerError(t *testing.T) {
	t.Parallel()

	withDiagnostic := &MarkerError{Output: "", Diagnostic: "invalid marker: 'os_name ='"}
	assert.Equal(t, "invalid marker: 'os_name ='", withDiagnostic.Error())

	withoutDiagnostic := &MarkerError{Output: "Maybe"}
	assert.Contains(t, withoutDiagnostic.Error(), `"Maybe"`)
}

func TestEmbeddedScripts(t *testing.T) {
	t.Parallel()
	assert.Contains(t, evalMarkerScript, "sys.argv[1]")
	assert.NotEmpty(t, compTagScript)
}
