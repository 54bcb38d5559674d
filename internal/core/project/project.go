// Package project locates a cairn-managed project on disk and exposes the
// operations that need both the project layout and its interpreter: lock
// loading, pip invocations, entry-point running.
package project

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pycairn/cairn/internal/core/entrypoints"
	"github.com/pycairn/cairn/internal/core/lockfile"
	"github.com/pycairn/cairn/internal/core/python"
)

// PypackagesDir is the directory marking a project root, and the parent of
// every per-interpreter environment.
const PypackagesDir = "__pypackages__"

// ErrProjectNotFound is returned when no ancestor directory contains a
// __pypackages__ marker.
var ErrProjectNotFound = errors.New("project not found")

// EnvironmentNotFoundError is returned when the project exists but has no
// environment materialized for the interpreter in use.
type EnvironmentNotFoundError struct {
	Root        string
	Interpreter string
}

func (e *EnvironmentNotFoundError) Error() string {
	return fmt.Sprintf("environment not found for %q in %s", e.Interpreter, e.Root)
}

// CommandNotFoundError is returned by Run when no installed entry point
// matches the requested command.
type CommandNotFoundError struct {
	Command string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("command %q not found", e.Command)
}

// Project is a located project root paired with the interpreter that will
// operate on it.
type Project struct {
	root        string
	interpreter *python.Interpreter

	log *logrus.Entry
}

// Locate walks up from directory to the nearest root containing
// __pypackages__. It needs no interpreter, so commands that only read the
// lock file can use it directly.
func Locate(directory string) (string, error) {
	p, err := filepath.Abs(directory)
	if err != nil {
		return "", err
	}
	for {
		marker := filepath.Join(p, PypackagesDir)
		if info, err := os.Stat(marker); err == nil && info.IsDir() {
			return p, nil
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", fmt.Errorf("%w in %s or any parent", ErrProjectNotFound, directory)
		}
		p = parent
	}
}

// Find locates the project containing directory and binds it to an
// interpreter.
func Find(directory string, interpreter *python.Interpreter) (*Project, error) {
	root, err := Locate(directory)
	if err != nil {
		return nil, err
	}
	return &Project{
		root:        root,
		interpreter: interpreter,
		log:         logrus.WithField("component", "project"),
	}, nil
}

// FindFromCwd locates the project containing the working directory.
func FindFromCwd(interpreter *python.Interpreter) (*Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Find(cwd, interpreter)
}

// Root returns the project root directory.
func (p *Project) Root() string {
	return p.root
}

// Interpreter returns the interpreter the project is bound to.
func (p *Project) Interpreter() *python.Interpreter {
	return p.interpreter
}

func (p *Project) pypackages() string {
	return filepath.Join(p.root, PypackagesDir)
}

// EnvRoot returns the installation prefix for this interpreter, i.e.
// __pypackages__/<compatibility tag>.
func (p *Project) EnvRoot() (string, error) {
	return p.interpreter.PresumedEnvRoot(p.pypackages())
}

// SitePackages returns the environment's site-packages directory, failing
// if it has not been materialized yet.
func (p *Project) SitePackages() (string, error) {
	dir, err := p.interpreter.PresumedSitePackages(p.pypackages())
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", &EnvironmentNotFoundError{Root: p.root, Interpreter: p.interpreter.Name()}
	}
	return dir, nil
}

// ReadLockFile parses the project's lock document.
func (p *Project) ReadLockFile() (*lockfile.Lock, error) {
	return lockfile.Load(p.root)
}

// EvaluateMarker delegates marker evaluation to the project's interpreter.
func (p *Project) EvaluateMarker(expression string) (bool, error) {
	return p.interpreter.EvaluateMarker(expression)
}

// PipInstall runs one pip invocation for a rendered requirement file. The
// exit code carries install failures; err is reserved for not being able to
// run pip at all.
func (p *Project) PipInstall(requirementFile, prefix string, requireHashes bool) (int, error) {
	args := []string{
		"-m", "pip", "install",
		"--requirement", requirementFile,
		"--prefix", prefix,
		"--no-deps",
	}
	if requireHashes {
		args = append(args, "--require-hashes")
	}

	cmd := exec.Command(p.interpreter.Location(), args...)
	cmd.Env = append(os.Environ(),
		"PIP_DISABLE_PIP_VERSION_CHECK=1",
		"PIP_NO_WARN_SCRIPT_LOCATION=0",
		"PIP_REQUIRE_VIRTUALENV=0",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	p.log.WithField("args", args).Debug("running pip")
	return runExitCode(cmd)
}

// EntryPoints lists the commands installed into the environment.
func (p *Project) EntryPoints() ([]entrypoints.EntryPoint, error) {
	sitePackages, err := p.SitePackages()
	if err != nil {
		return nil, err
	}
	return entrypoints.Load(sitePackages)
}

// Run executes an installed entry point with the given arguments and
// returns its exit code.
func (p *Project) Run(command string, args []string) (int, error) {
	sitePackages, err := p.SitePackages()
	if err != nil {
		return 0, err
	}
	ep, ok, err := entrypoints.Find(sitePackages, command)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &CommandNotFoundError{Command: command}
	}

	code := fmt.Sprintf(
		"import sys\n"+
			"from %s import %s\n"+
			"if __name__ == '__main__':\n"+
			"    sys.argv[0] = %q\n"+
			"    sys.exit(%s())\n",
		ep.Module, ep.Function, ep.Name, ep.Function,
	)

	cmd := p.interpreter.Command("", sitePackages, append([]string{"-c", code}, args...)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return runExitCode(cmd)
}

// Py runs the bare interpreter with the environment's site-packages on its
// path and returns its exit code.
func (p *Project) Py(args []string) (int, error) {
	sitePackages, err := p.SitePackages()
	if err != nil {
		return 0, err
	}
	cmd := p.interpreter.Command("", sitePackages, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return runExitCode(cmd)
}

// runExitCode runs a command, folding non-zero exits into the returned
// code. ExitCode is -1 when the process died without reporting one.
func runExitCode(cmd *exec.Cmd) (int, error) {
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil
}
