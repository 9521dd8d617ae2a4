// Package provision runs a machine's provision steps on the local host.
//
// A run links every synced folder, executes file and shell steps in
// declaration order, stops at the first failure and always removes the
// folder links it created. Progress is kept on a v1alpha1.ProvisionRun.
package provision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/console"
	"github.com/jbweber/kiln/internal/ctxlog"
	"github.com/jbweber/kiln/internal/naming"
	"github.com/jbweber/kiln/internal/status"
)

// DefaultSudo elevates privileged shell steps.
const DefaultSudo = "sudo"

// commandRunner executes shell command lines for the executor.
//
// In production, this is satisfied by ExecRunner.
// In tests, this is satisfied by mock implementations.
type commandRunner interface {
	// Run executes the command and waits for it to exit
	Run(ctx context.Context, cmd Command) error
}

// Options tune where the executor places files and how it runs commands.
type Options struct {
	// GuestHome is the guest path prefix mapped onto HostHome.
	GuestHome string

	// HostHome replaces GuestHome and expands "~". Defaults to the
	// current user's home directory.
	HostHome string

	// TempDir holds generated scripts. Defaults to os.TempDir().
	TempDir string

	// Sudo prefixes privileged commands. Defaults to DefaultSudo.
	Sudo string

	// Timeout bounds each shell command. Zero means no bound.
	Timeout time.Duration

	// Stderr receives child process error output. Defaults to os.Stderr.
	Stderr io.Writer
}

// Executor runs provision steps for one machine at a time.
type Executor struct {
	runner  commandRunner
	printer *console.Printer
	opts    Options
}

// NewExecutor returns an Executor that runs commands through /bin/sh.
func NewExecutor(printer *console.Printer, opts Options) *Executor {
	return newExecutorWithRunner(ExecRunner{}, printer, opts)
}

func newExecutorWithRunner(runner commandRunner, printer *console.Printer, opts Options) *Executor {
	if opts.GuestHome == "" {
		opts.GuestHome = naming.DefaultGuestHome
	}
	if opts.HostHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.HostHome = home
		}
	}
	if opts.Sudo == "" {
		opts.Sudo = DefaultSudo
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if printer == nil {
		printer = console.New(io.Discard)
	}
	return &Executor{runner: runner, printer: printer, opts: opts}
}

// Run provisions m and returns its run record. The record is returned even
// when err is non-nil and is always in phase FoldersUnlinked.
func (e *Executor) Run(ctx context.Context, m *v1alpha1.Machine, project string) (*v1alpha1.ProvisionRun, error) {
	run := v1alpha1.NewProvisionRun(m, project)
	run.Status.StartTime = v1alpha1.Now()

	logger := ctxlog.FromContext(ctx).With("machine", m.Name, "run", run.UID)
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Info("Linking synced folders", "count", len(m.SyncedFolders))
	if err := e.linkFolders(ctx, run, m.SyncedFolders); err != nil {
		e.finish(ctx, run, err)
		return run, err
	}
	transition(logger, status.TransitionToFoldersLinked(run))

	transition(logger, status.TransitionToProvisioning(run))
	err := e.provisionAll(ctx, run, m.Provisions)

	e.finish(ctx, run, err)
	return run, err
}

// provisionAll runs each step in order and stops at the first failure.
func (e *Executor) provisionAll(ctx context.Context, run *v1alpha1.ProvisionRun, provisions []v1alpha1.Provision) error {
	logger := ctxlog.FromContext(ctx)

	for i := range provisions {
		p := provisions[i].Resolved()

		if p.EffectiveRun() == v1alpha1.RunNever {
			logger.Debug("Skipping provision", "provision", p.Label(), "run", p.Run)
			e.printer.Detail("skipping %s (run: never)", p.Label())
			status.SkipStep(run, p, "run: never")
			continue
		}

		step := status.StartStep(p)
		err := e.runStep(ctx, p)
		status.FinishStep(run, step, err)
		if err != nil {
			logger.Error("Provision failed", "provision", p.Label(), "error", err)
			return err
		}
		logger.Info("Provision completed", "provision", p.Label(), "duration", status.StepDuration(run.Status.Steps[len(run.Status.Steps)-1]))
	}
	return nil
}

// finish records the outcome and removes the folder links.
func (e *Executor) finish(ctx context.Context, run *v1alpha1.ProvisionRun, runErr error) {
	logger := ctxlog.FromContext(ctx)

	if runErr != nil {
		transition(logger, status.TransitionToFailed(run, failureReason(runErr), runErr.Error()))
	} else {
		transition(logger, status.TransitionToSucceeded(run))
	}

	e.unlinkFolders(ctx, run.Status.Links)
	transition(logger, status.TransitionToFoldersUnlinked(run))
}

func transition(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("Invalid run transition", "error", err)
	}
}

// failureReason names the error class for the Provisioned condition.
func failureReason(err error) string {
	var (
		folderErr *SyncedFolderError
		configErr *ProvisionConfigError
		execErr   *ExecutionError
	)
	switch {
	case errors.As(err, &folderErr):
		return "SyncedFolderError"
	case errors.As(err, &configErr):
		return "ProvisionConfigError"
	case errors.As(err, &execErr):
		return "ExecutionError"
	default:
		return "Error"
	}
}
