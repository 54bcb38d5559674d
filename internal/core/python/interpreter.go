// Package python wraps the target interpreter: discovery, subprocess
// plumbing, PEP 508 marker evaluation, and the environment layout derived
// from the interpreter's compatibility tag.
package python

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
)

//go:embed evalmarker.py
var evalMarkerScript string

//go:embed comptag.py
var compTagScript string

const printExecutableCode = "from __future__ import print_function; " +
	"import sys; print(sys.executable, end='')"

const printVersionCode = "from __future__ import print_function; " +
	"import platform; print(platform.python_version(), end='')"

// MarkerError reports a marker expression the interpreter-side evaluator
// rejected. Output carries whatever the evaluator printed instead of
// True/False; Diagnostic carries its stderr text.
type MarkerError struct {
	Output     string
	Diagnostic string
}

func (e *MarkerError) Error() string {
	if e.Diagnostic != "" {
		return e.Diagnostic
	}
	return fmt.Sprintf("unexpected marker evaluator output %q", e.Output)
}

// Interpreter is a discovered Python interpreter, addressed by the real
// executable path it reported for itself.
type Interpreter struct {
	name     string
	location string

	compTag string // cached, computed on first use

	log *logrus.Entry
}

// Discover locates program on PATH, asks it for sys.executable, and wraps
// the result. name is the label used in diagnostics (usually the program
// name the user asked for).
func Discover(name, program string, args ...string) (*Interpreter, error) {
	path, err := exec.LookPath(program)
	if err != nil {
		return nil, fmt.Errorf("looking up interpreter %q: %w", program, err)
	}

	cmd := exec.Command(path, append(args, "-c", printExecutableCode)...)
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("querying interpreter %q: %w", program, err)
	}

	location := strings.TrimSpace(string(out))
	if location == "" {
		return nil, fmt.Errorf("interpreter %q did not report an executable", program)
	}
	return &Interpreter{
		name:     name,
		location: location,
		log:      logrus.WithField("component", "python"),
	}, nil
}

// Name returns the diagnostic label for this interpreter.
func (i *Interpreter) Name() string {
	return i.name
}

// Location returns the interpreter's executable path.
func (i *Interpreter) Location() string {
	return i.location
}

// Command builds an invocation of the interpreter. pythonPath, when
// non-empty, is exported as PYTHONPATH; ioEncoding, when non-empty, as
// PYTHONIOENCODING.
func (i *Interpreter) Command(ioEncoding, pythonPath string, args ...string) *exec.Cmd {
	cmd := exec.Command(i.location, args...)
	cmd.Env = os.Environ()
	if ioEncoding != "" {
		cmd.Env = append(cmd.Env, "PYTHONIOENCODING="+ioEncoding)
	}
	if pythonPath != "" {
		cmd.Env = append(cmd.Env, "PYTHONPATH="+pythonPath)
	}
	return cmd
}

// EvaluateMarker submits a marker expression to the interpreter-side
// evaluator and interprets its True/False verdict. Anything else comes back
// as a MarkerError carrying the evaluator's diagnostics.
func (i *Interpreter) EvaluateMarker(expression string) (bool, error) {
	cmd := i.Command("utf-8", "", "-c", evalMarkerScript, expression)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// The script reports invalid markers on stderr with a zero exit, so the
	// run error only matters when the interpreter itself failed to start.
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return false, fmt.Errorf("running marker evaluator: %w", err)
		}
	}

	switch out := stdout.String(); out {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return false, &MarkerError{Output: out, Diagnostic: stderr.String()}
	}
}

// Version asks the interpreter for its version, parsed as a semantic
// version (Python versions are X.Y.Z and parse cleanly).
func (i *Interpreter) Version() (*semver.Version, error) {
	cmd := i.Command("utf-8", "", "-c", printVersionCode)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("querying interpreter version: %w", err)
	}
	v, err := semver.NewVersion(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, fmt.Errorf("parsing interpreter version %q: %w", strings.TrimSpace(string(out)), err)
	}
	return v, nil
}

// CompatibilityTag returns the interpreter's best PEP 425 tag, e.g.
// "cp312-cp312-manylinux_2_17_x86_64". The tag names the per-interpreter
// subdirectory of __pypackages__ and is cached after the first query.
func (i *Interpreter) CompatibilityTag() (string, error) {
	if i.compTag != "" {
		return i.compTag, nil
	}

	cmd := i.Command("utf-8", "", "-c", compTagScript)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("querying compatibility tag: %w", err)
	}
	tag := strings.TrimSpace(string(out))
	if tag == "" {
		return "", fmt.Errorf("interpreter %q has no compatibility tags", i.name)
	}
	i.log.WithField("tag", tag).Debug("resolved compatibility tag")
	i.compTag = tag
	return tag, nil
}

// PresumedEnvRoot returns the environment root for this interpreter under a
// __pypackages__ directory.
func (i *Interpreter) PresumedEnvRoot(pypackages string) (string, error) {
	tag, err := i.CompatibilityTag()
	if err != nil {
		return "", err
	}
	return filepath.Join(pypackages, tag), nil
}

// PresumedSitePackages returns where the environment root keeps its
// site-packages directory on this platform.
func (i *Interpreter) PresumedSitePackages(pypackages string) (string, error) {
	envRoot, err := i.PresumedEnvRoot(pypackages)
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(envRoot, "Lib", "site-packages"), nil
	}
	version, err := i.Version()
	if err != nil {
		return "", err
	}
	return sitePackagesDir(envRoot, version), nil
}

func sitePackagesDir(envRoot string, version *semver.Version) string {
	lib := fmt.Sprintf("python%d.%d", version.Major(), version.Minor())
	return filepath.Join(envRoot, "lib", lib, "site-packages")
}
