package lockfile_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pycairn/cairn/internal/core/lockfile"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestRequirementTxt_Version(t *testing.T) {
	t.Parallel()
	pkg := lockfile.NewPythonPackage("certifi", lockfile.VersionSpecifier("2017.7.27.1", nil), nil)

	hashed, line := pkg.RequirementTxt()
	assert.False(t, hashed)
	assert.Equal(t, "certifi == 2017.7.27.1", line)
}

func TestRequirementTxt_VersionWithSource(t *testing.T) {
	t.Parallel()
	lock := parseLock(t, `{
		"sources": {"pypi": {"url": "https://pypi.org/simple"}},
		"dependencies": {
			"certifi": {"python": {"name": "certifi", "version": "2017.7.27.1", "source": "pypi"}}
		}
	}`)

	dep, ok := lock.Get("certifi")
	require.True(t, ok)
	hashed, line := dep.Python().RequirementTxt()
	assert.False(t, hashed)
	assert.Equal(t, "certifi == 2017.7.27.1 --index-url=https://pypi.org/simple", line)
}

func TestRequirementTxt_VersionWithUntrustedSource(t *testing.T) {
	t.Parallel()
	lock := parseLock(t, `{
		"sources": {
			"mirror": {"url": "https://mirrors.example.com/simple", "no_verify_ssl": true}
		},
		"dependencies": {
			"foo": {"python": {"name": "foo", "version": "1.0", "source": "mirror"}}
		}
	}`)

	dep, ok := lock.Get("foo")
	require.True(t, ok)
	_, line := dep.Python().RequirementTxt()
	assert.Equal(t,
		"foo == 1.0 --index-url=https://mirrors.example.com/simple --trusted-host=mirrors.example.com",
		line)
}

func TestRequirementTxt_URL(t *testing.T) {
	t.Parallel()
	u := mustURL(t, "https://files.example.com/foo-1.0-py3-none-any.whl")
	pkg := lockfile.NewPythonPackage("foo", lockfile.URLSpecifier(u, false), nil)

	hashed, line := pkg.RequirementTxt()
	assert.False(t, hashed)
	assert.Equal(t, "https://files.example.com/foo-1.0-py3-none-any.whl#egg=foo", line)
}

func TestRequirementTxt_URLUntrusted(t *testing.T) {
	t.Parallel()
	u := mustURL(t, "http://files.example.com/foo-1.0.tar.gz")
	pkg := lockfile.NewPythonPackage("foo", lockfile.URLSpecifier(u, true), nil)

	_, line := pkg.RequirementTxt()
	assert.Equal(t,
		"http://files.example.com/foo-1.0.tar.gz#egg=foo --trusted-host=files.example.com",
		line)
}

func TestRequirementTxt_Path(t *testing.T) {
	t.Parallel()
	pkg := lockfile.NewPythonPackage("foo", lockfile.PathSpecifier("./vendored/foo"), nil)

	hashed, line := pkg.RequirementTxt()
	assert.False(t, hashed)
	assert.Equal(t, "./vendored/foo", line)
}

func TestRequirementTxt_Vcs(t *testing.T) {
	t.Parallel()
	u := mustURL(t, "git+https://github.com/example/foo.git")
	pkg := lockfile.NewPythonPackage("foo", lockfile.VcsSpecifier(u, "0123abcd"), nil)

	_, line := pkg.RequirementTxt()
	assert.Equal(t, "git+https://github.com/example/foo.git@0123abcd#egg=foo", line)
}

func TestRequirementTxt_Hashes(t *testing.T) {
	t.Parallel()
	hashes := lockfile.NewHashes(
		lockfile.Hash{Algorithm: "sha256", Digest: "bbb"},
		lockfile.Hash{Algorithm: "sha256", Digest: "aaa"},
	)
	pkg := lockfile.NewPythonPackage("foo", lockfile.VersionSpecifier("1.0", nil), hashes)

	hashed, line := pkg.RequirementTxt()
	assert.True(t, hashed, "a package with hashes must request --require-hashes")
	assert.Equal(t, "foo == 1.0 --hash sha256:aaa --hash sha256:bbb", line)
}

func TestParse_PackageRedundantFields(t *testing.T) {
	t.Parallel()
	_, err := lockfile.Parse([]byte(`{
		"dependencies": {
			"foo": {"python": {
				"name": "foo",
				"version": "1.0",
				"url": "https://files.example.com/foo.whl"
			}}
		}
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, lockfile.ErrRedundantPackageFields)
	assert.Contains(t, err.Error(), `"foo"`)
}

func TestParse_PackageVcsWithoutRev(t *testing.T) {
	t.Parallel()
	_, err := lockfile.Parse([]byte(`{
		"dependencies": {
			"foo": {"python": {"name": "foo", "vcs": "git+https://github.com/example/foo.git"}}
		}
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field: rev")
}

func TestParse_PackageMissingName(t *testing.T) {
	t.Parallel()
	_, err := lockfile.Parse([]byte(`{
		"dependencies": {"foo": {"python": {"version": "1.0"}}}
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field: name")
}

func TestParse_PackageMissingSpecifier(t *testing.T) {
	t.Parallel()
	_, err := lockfile.Parse([]byte(`{
		"dependencies": {"foo": {"python": {"name": "foo"}}}
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field")
}

func TestParse_PackageDuplicateField(t *testing.T) {
	t.Parallel()
	_, err := lockfile.Parse([]byte(`{
		"dependencies": {
			"foo": {"python": {"name": "foo", "version": "1.0", "version": "2.0"}}
		}
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field")
}

func TestParse_PackageUnresolvableSource(t *testing.T) {
	t.Parallel()
	_, err := lockfile.Parse([]byte(`{
		"dependencies": {
			"foo": {"python": {"name": "foo", "version": "1.0", "source": "nope"}}
		}
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unresolvable source name "nope"`)
}

func TestParse_PackageSourceWithoutVersion(t *testing.T) {
	t.Parallel()
	_, err := lockfile.Parse([]byte(`{
		"sources": {"pypi": {"url": "https://pypi.org/simple"}},
		"dependencies": {
			"foo": {"python": {"name": "foo", "path": "./foo", "source": "pypi"}}
		}
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, lockfile.ErrRedundantPackageFields)
}
