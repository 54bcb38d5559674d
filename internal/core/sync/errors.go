package sync

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDefaultSectionNotFound is returned when the default section is
// requested but the lock file has no "" node.
var ErrDefaultSectionNotFound = errors.New("default section not found in lock file")

// ExtraSectionNotFoundError is returned when a requested extra has no
// section node in the lock file.
type ExtraSectionNotFoundError struct {
	Name string
}

func (e *ExtraSectionNotFoundError) Error() string {
	return fmt.Sprintf("section %q not found in lock file", e.Name)
}

// ExitCodeNone marks an installer invocation that died without reporting an
// exit code (killed by a signal).
const ExitCodeNone = -1

// InstallFailure records one failed installer invocation.
type InstallFailure struct {
	Key      string
	ExitCode int
}

// InstallCommandError aggregates every failed install of a run. It is
// reported only after all planned installs have been attempted.
type InstallCommandError struct {
	Failures []InstallFailure
}

func (e *InstallCommandError) Error() string {
	lines := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		if f.ExitCode == ExitCodeNone {
			lines[i] = fmt.Sprintf("failed to install %q", f.Key)
		} else {
			lines[i] = fmt.Sprintf("failed to install %q (%d)", f.Key, f.ExitCode)
		}
	}
	return strings.Join(lines, "; ")
}
