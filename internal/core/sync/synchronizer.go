// Package sync resolves which packages a lock file requires for a requested
// combination of sections under a target interpreter's environment, and
// installs them one pinned package at a time.
package sync

import (
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pycairn/cairn/internal/core/lockfile"
)

// Target is the interpreter-facing surface the Synchronizer drives. The
// production implementation shells out to the project's base interpreter;
// tests substitute an in-process fake.
type Target interface {
	// EnvRoot returns the installation prefix packages are installed under.
	EnvRoot() (string, error)

	// EvaluateMarker evaluates a non-empty PEP 508 marker expression
	// against the target environment.
	EvaluateMarker(expression string) (bool, error)

	// PipInstall runs one installer invocation for the rendered requirement
	// file. A non-zero exit status is reported through the returned code
	// (ExitCodeNone when the installer died without one), not through err;
	// err is reserved for failures to run the installer at all.
	PipInstall(requirementFile, prefix string, requireHashes bool) (int, error)
}

// Synchronizer consumes a parsed Lock and produces one hash-pinned pip
// invocation per required package. The graph is read-only during a run and
// every step is sequential.
type Synchronizer struct {
	lock *lockfile.Lock
	log  *logrus.Entry
}

// New wraps a parsed lock file.
func New(lock *lockfile.Lock) *Synchronizer {
	return &Synchronizer{
		lock: lock,
		log:  logrus.WithField("component", "sync"),
	}
}

// evaluateMarker decides whether a guarded edge is taken. Only attached
// markers reach this point; an unconditional (nil) marker never does.
func (s *Synchronizer) evaluateMarker(m *lockfile.Marker, target Target) (bool, error) {
	expression := m.Expression()

	// any([]) is always false. Note that this is different from a null
	// marker, which evaluates to true.
	if expression == "" {
		return false, nil
	}

	ok, err := target.EvaluateMarker(expression)
	if err != nil {
		return false, err
	}
	s.log.WithFields(logrus.Fields{
		"expression": expression,
		"result":     ok,
	}).Debug("evaluated marker")
	return ok, nil
}

// collectRequired walks the graph depth first from one root, adding every
// reachable package to the resolved set. The visited set spans the whole
// run, so a package reachable from several roots resolves once and
// traversal stays bounded even if the graph ever contains a cycle.
func (s *Synchronizer) collectRequired(
	current *lockfile.Dependency,
	resolved map[string]*lockfile.PythonPackage,
	visited map[string]bool,
	target Target,
) error {
	if visited[current.Key()] {
		return nil
	}
	visited[current.Key()] = true
	if python := current.Python(); python != nil {
		resolved[current.Key()] = python
	}
	for _, edge := range current.Edges() {
		if edge.Marker != nil {
			ok, err := s.evaluateMarker(edge.Marker, target)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		if err := s.collectRequired(edge.To, resolved, visited, target); err != nil {
			return err
		}
	}
	return nil
}

// requiredPackages computes the resolved set for the requested sections.
// Section lookups are validated before any traversal side effect.
func (s *Synchronizer) requiredPackages(target Target, includeDefault bool, extras []string) (map[string]*lockfile.PythonPackage, error) {
	resolved := map[string]*lockfile.PythonPackage{}
	visited := map[string]bool{}

	if includeDefault {
		root, ok := s.lock.Default()
		if !ok {
			return nil, ErrDefaultSectionNotFound
		}
		if err := s.collectRequired(root, resolved, visited, target); err != nil {
			return nil, err
		}
	}
	for _, extra := range extras {
		root, ok := s.lock.Extra(extra)
		if !ok {
			return nil, &ExtraSectionNotFoundError{Name: extra}
		}
		if err := s.collectRequired(root, resolved, visited, target); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// installInto runs one pip invocation per resolved package, each against an
// isolated single-line requirement file. Failures are collected and the
// remaining installs still run; the aggregate is surfaced only after every
// package has been attempted.
//
// Packages are installed in key order. The lock graph makes order immaterial
// (--no-deps stops pip from re-resolving), so a deterministic order costs
// nothing and keeps runs reproducible.
func (s *Synchronizer) installInto(target Target, prefix string, packages map[string]*lockfile.PythonPackage) error {
	keys := make([]string, 0, len(packages))
	for key := range packages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var failures []InstallFailure
	for _, key := range keys {
		hashed, line := packages[key].RequirementTxt()
		code, err := s.installOne(target, prefix, key, line, hashed)
		if err != nil {
			return err
		}
		if code != 0 {
			failures = append(failures, InstallFailure{Key: key, ExitCode: code})
		}
	}

	if len(failures) > 0 {
		return &InstallCommandError{Failures: failures}
	}
	return nil
}

// installOne writes the requirement line to its own temporary file, runs the
// installer against it, and removes the file on every exit path.
func (s *Synchronizer) installOne(target Target, prefix, key, line string, hashed bool) (int, error) {
	f, err := os.CreateTemp("", "cairn-requirement-*.txt")
	if err != nil {
		return 0, fmt.Errorf("creating requirement file for %q: %w", key, err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	_, werr := fmt.Fprintln(f, line)
	cerr := f.Close()
	if werr != nil {
		return 0, fmt.Errorf("writing requirement file for %q: %w", key, werr)
	}
	if cerr != nil {
		return 0, fmt.Errorf("writing requirement file for %q: %w", key, cerr)
	}

	s.log.WithFields(logrus.Fields{
		"key":            key,
		"requirement":    line,
		"require_hashes": hashed,
	}).Debug("installing package")

	return target.PipInstall(f.Name(), prefix, hashed)
}

// Sync installs everything the requested sections require into the target's
// environment. Section-resolution and marker errors abort before any
// installer invocation; individual install failures are aggregated into one
// InstallCommandError after all attempts complete.
func (s *Synchronizer) Sync(target Target, includeDefault bool, extras []string) error {
	packages, err := s.requiredPackages(target, includeDefault, extras)
	if err != nil {
		return err
	}
	prefix, err := target.EnvRoot()
	if err != nil {
		return err
	}
	s.log.WithField("count", len(packages)).Debug("resolved required packages")
	return s.installInto(target, prefix, packages)
}
