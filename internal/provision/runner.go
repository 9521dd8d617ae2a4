package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

const (
	// DefaultShell interprets the command lines built by CommandLine.
	DefaultShell = "/bin/sh"

	// DefaultWaitDelay bounds how long a cancelled command may hold its
	// output pipes open.
	DefaultWaitDelay = time.Second
)

// Command is one shell command line to execute.
type Command struct {
	Line   string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// ExecRunner runs commands through a local shell.
type ExecRunner struct {
	// Shell defaults to DefaultShell.
	Shell string

	// WaitDelay defaults to DefaultWaitDelay.
	WaitDelay time.Duration
}

// Run executes cmd and waits for it. A non-zero exit is returned as an
// *exec.ExitError.
func (r ExecRunner) Run(ctx context.Context, cmd Command) error {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	c := exec.CommandContext(ctx, shell, "-c", cmd.Line)
	c.Env = cmd.Env
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr
	c.WaitDelay = r.WaitDelay
	if c.WaitDelay == 0 {
		c.WaitDelay = DefaultWaitDelay
	}

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("command interrupted: %w", ctx.Err())
		}
		return err
	}
	return nil
}

// exitCode extracts a process exit status from err, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
