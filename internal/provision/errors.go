package provision

import (
	"fmt"

	"github.com/jbweber/kiln/internal/console"
)

// SyncedFolderError reports a synced folder that could not be emulated.
type SyncedFolderError struct {
	Host   string
	Guest  string
	Reason string
}

func (e *SyncedFolderError) Error() string {
	return console.Label("synced folder", e.Reason)
}

// ProvisionConfigError reports a provision entry that cannot run as written.
type ProvisionConfigError struct {
	Kind string
	Name string
	Err  error
}

func (e *ProvisionConfigError) Error() string {
	return console.Label(e.Kind, e.Err.Error())
}

func (e *ProvisionConfigError) Unwrap() error {
	return e.Err
}

// ExecutionError reports a provision step whose command or copy failed.
// ExitCode is -1 when the failure was not a process exit status.
type ExecutionError struct {
	Provision string
	ExitCode  int
	Err       error
}

func (e *ExecutionError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("provision %q exited with status %d", e.Provision, e.ExitCode)
	}
	return fmt.Sprintf("provision %q failed: %v", e.Provision, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
