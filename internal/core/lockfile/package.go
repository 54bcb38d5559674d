package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrRedundantPackageFields is returned when a package body pins more than
// one of version/url/path/vcs, or mixes fields from different specifier
// kinds.
var ErrRedundantPackageFields = errors.New("redundant package fields")

// SpecifierKind discriminates how a package is obtained.
type SpecifierKind int

const (
	// SpecifierVersion pins an exact version, optionally from a named index.
	SpecifierVersion SpecifierKind = iota
	// SpecifierURL points at a downloadable artifact.
	SpecifierURL
	// SpecifierPath points at a local directory or archive.
	SpecifierPath
	// SpecifierVcs points at a version-control URL plus an exact revision.
	SpecifierVcs
)

// Specifier describes the installable origin of a package. Exactly one kind
// is populated; the accessors for other kinds return zero values.
type Specifier struct {
	kind SpecifierKind

	version string
	source  *Source

	url         *url.URL
	noVerifySSL bool

	path string

	rev string
}

// VersionSpecifier pins name == version, optionally against a named index.
func VersionSpecifier(version string, source *Source) Specifier {
	return Specifier{kind: SpecifierVersion, version: version, source: source}
}

// URLSpecifier installs directly from an artifact URL.
func URLSpecifier(u *url.URL, noVerifySSL bool) Specifier {
	return Specifier{kind: SpecifierURL, url: u, noVerifySSL: noVerifySSL}
}

// PathSpecifier installs from a local path.
func PathSpecifier(path string) Specifier {
	return Specifier{kind: SpecifierPath, path: path}
}

// VcsSpecifier installs from a version-control checkout at an exact revision.
func VcsSpecifier(u *url.URL, rev string) Specifier {
	return Specifier{kind: SpecifierVcs, url: u, rev: rev}
}

// Kind reports which specifier variant is populated.
func (s Specifier) Kind() SpecifierKind {
	return s.kind
}

// Version returns the pinned version for SpecifierVersion.
func (s Specifier) Version() string {
	return s.version
}

// Source returns the resolved index for SpecifierVersion, or nil.
func (s Specifier) Source() *Source {
	return s.source
}

// URL returns the artifact or VCS URL for SpecifierURL and SpecifierVcs.
func (s Specifier) URL() *url.URL {
	return s.url
}

// Path returns the local path for SpecifierPath.
func (s Specifier) Path() string {
	return s.path
}

// Rev returns the pinned revision for SpecifierVcs.
func (s Specifier) Rev() string {
	return s.rev
}

// PythonPackage is a fully resolved installable unit. It is immutable after
// the lock parse; the only behavior it exposes beyond identity is rendering
// its pip requirement line.
type PythonPackage struct {
	name      string
	specifier Specifier
	hashes    *Hashes
}

// NewPythonPackage builds a package from already-resolved parts. hashes may
// be nil when the lock document pins none.
func NewPythonPackage(name string, specifier Specifier, hashes *Hashes) *PythonPackage {
	return &PythonPackage{name: name, specifier: specifier, hashes: hashes}
}

// Name returns the distribution name.
func (p *PythonPackage) Name() string {
	return p.name
}

// Specifier returns the installable origin of the package.
func (p *PythonPackage) Specifier() Specifier {
	return p.specifier
}

// Hashes returns the pinned digests, or nil when none are locked.
func (p *PythonPackage) Hashes() *Hashes {
	return p.hashes
}

// RequirementTxt renders the single requirement line handed to pip. The
// boolean reports whether any hash is pinned; the caller adds
// --require-hashes to the install invocation exactly when it is true.
func (p *PythonPackage) RequirementTxt() (hashed bool, line string) {
	var args []string

	switch p.specifier.kind {
	case SpecifierVersion:
		args = append(args, fmt.Sprintf("%s == %s", p.name, p.specifier.version))
		if source := p.specifier.source; source != nil {
			args = append(args, fmt.Sprintf("--index-url=%s", source.BaseURL()))
			if source.NoVerifySSL() {
				if host := source.BaseURL().Hostname(); host != "" {
					args = append(args, fmt.Sprintf("--trusted-host=%s", host))
				}
			}
		}
	case SpecifierURL:
		u := *p.specifier.url
		u.Fragment = fmt.Sprintf("egg=%s", p.name)
		args = append(args, u.String())
		if p.specifier.noVerifySSL {
			if host := u.Hostname(); host != "" {
				args = append(args, fmt.Sprintf("--trusted-host=%s", host))
			}
		}
	case SpecifierPath:
		args = append(args, p.specifier.path)
	case SpecifierVcs:
		u := *p.specifier.url
		u.Path = fmt.Sprintf("%s@%s", u.Path, p.specifier.rev)
		u.Fragment = fmt.Sprintf("egg=%s", p.name)
		args = append(args, u.String())
	}

	if p.hashes != nil {
		for _, h := range p.hashes.List() {
			args = append(args, "--hash", h.String())
		}
	}

	return p.hashes != nil && p.hashes.Len() > 0, strings.Join(args, " ")
}

// packageEntry is the raw "python" body of a dependency, before source names
// and hashes are resolved. Field presence is tracked with pointers so
// duplicates and cross-kind mixtures can be rejected.
type packageEntry struct {
	name        *string
	source      *string
	version     *string
	artifactURL *url.URL
	noVerifySSL *bool
	path        *string
	vcsURL      *url.URL
	rev         *string
}

func decodeURLField(dec *json.Decoder) (*url.URL, error) {
	var raw string
	if err := decodeValue(dec, &raw); err != nil {
		return nil, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed URL %q: %w", raw, err)
	}
	return u, nil
}

func (e *packageEntry) UnmarshalJSON(data []byte) error {
	return decodeObject(data, func(key string, dec *json.Decoder) error {
		dup := func() error { return fmt.Errorf("duplicate field %q", key) }
		switch key {
		case "name":
			if e.name != nil {
				return dup()
			}
			var v string
			if err := decodeValue(dec, &v); err != nil {
				return err
			}
			e.name = &v
		case "source":
			if e.source != nil {
				return dup()
			}
			var v string
			if err := decodeValue(dec, &v); err != nil {
				return err
			}
			e.source = &v
		case "version":
			if e.version != nil {
				return dup()
			}
			var v string
			if err := decodeValue(dec, &v); err != nil {
				return err
			}
			e.version = &v
		case "url":
			if e.artifactURL != nil {
				return dup()
			}
			u, err := decodeURLField(dec)
			if err != nil {
				return err
			}
			e.artifactURL = u
		case "no_verify_ssl":
			if e.noVerifySSL != nil {
				return dup()
			}
			var v bool
			if err := decodeValue(dec, &v); err != nil {
				return err
			}
			e.noVerifySSL = &v
		case "path":
			if e.path != nil {
				return dup()
			}
			var v string
			if err := decodeValue(dec, &v); err != nil {
				return err
			}
			e.path = &v
		case "vcs":
			if e.vcsURL != nil {
				return dup()
			}
			u, err := decodeURLField(dec)
			if err != nil {
				return err
			}
			e.vcsURL = u
		case "rev":
			if e.rev != nil {
				return dup()
			}
			var v string
			if err := decodeValue(dec, &v); err != nil {
				return err
			}
			e.rev = &v
		default:
			return fmt.Errorf("unknown field %q in package", key)
		}
		return nil
	})
}

// toPackage resolves the entry against the source table and attaches the
// key's hashes. Exactly one specifier kind must be present.
func (e *packageEntry) toPackage(sources Sources, hashes *Hashes) (*PythonPackage, error) {
	if e.name == nil {
		return nil, fmt.Errorf("missing field: name")
	}

	kinds := 0
	for _, present := range []bool{
		e.version != nil,
		e.artifactURL != nil,
		e.path != nil,
		e.vcsURL != nil,
	} {
		if present {
			kinds++
		}
	}
	if kinds > 1 {
		return nil, ErrRedundantPackageFields
	}

	var specifier Specifier
	switch {
	case e.version != nil:
		var source *Source
		if e.source != nil {
			s, ok := sources.Get(*e.source)
			if !ok {
				return nil, fmt.Errorf("unresolvable source name %q", *e.source)
			}
			source = s
		}
		specifier = VersionSpecifier(*e.version, source)
	case e.artifactURL != nil:
		noVerifySSL := false
		if e.noVerifySSL != nil {
			noVerifySSL = *e.noVerifySSL
		}
		specifier = URLSpecifier(e.artifactURL, noVerifySSL)
	case e.path != nil:
		specifier = PathSpecifier(*e.path)
	case e.vcsURL != nil:
		if e.rev == nil {
			return nil, fmt.Errorf("missing field: rev")
		}
		specifier = VcsSpecifier(e.vcsURL, *e.rev)
	default:
		return nil, fmt.Errorf("missing field: version, url, path, or vcs")
	}

	// A source name only makes sense with a version pin; rev only with vcs.
	if e.source != nil && specifier.kind != SpecifierVersion {
		return nil, ErrRedundantPackageFields
	}
	if e.rev != nil && specifier.kind != SpecifierVcs {
		return nil, ErrRedundantPackageFields
	}

	return NewPythonPackage(*e.name, specifier, hashes), nil
}
