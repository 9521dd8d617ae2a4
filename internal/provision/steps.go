package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/ctxlog"
	"github.com/jbweber/kiln/internal/naming"
)

// shebang starts every script generated from an inline body.
const shebang = "#!/bin/bash\n"

// runStep validates p and dispatches it to its provisioner.
func (e *Executor) runStep(ctx context.Context, p *v1alpha1.Provision) error {
	if err := p.Validate(); err != nil {
		return configError(p, err)
	}

	switch p.Kind {
	case v1alpha1.ProvisionFile:
		return e.runFile(ctx, p)
	case v1alpha1.ProvisionShell:
		return e.runShell(ctx, p)
	default:
		return configError(p, &v1alpha1.UnsupportedKindError{Category: "provision", Kind: string(p.Kind)})
	}
}

// runFile copies Source to Destination, creating parent directories.
func (e *Executor) runFile(ctx context.Context, p *v1alpha1.Provision) error {
	e.printer.Step("file", "%s", p.Label())

	src, err := filepath.Abs(naming.ExpandHome(p.Source, e.opts.HostHome))
	if err != nil {
		return configError(p, err)
	}
	dst, err := filepath.Abs(naming.ExpandHome(p.Destination, e.opts.HostHome))
	if err != nil {
		return configError(p, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return configError(p, fmt.Errorf("source '%s' does not exist", p.Source))
	}
	if info.IsDir() {
		return configError(p, fmt.Errorf("source '%s' is a directory", p.Source))
	}

	ctxlog.FromContext(ctx).Info("Copying file", "source", src, "destination", dst)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &ExecutionError{Provision: p.Label(), ExitCode: -1,
			Err: fmt.Errorf("failed to create destination directory: %w", err)}
	}
	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return &ExecutionError{Provision: p.Label(), ExitCode: -1, Err: err}
	}
	return nil
}

// runShell materializes the script, runs it and always removes it again.
func (e *Executor) runShell(ctx context.Context, p *v1alpha1.Provision) error {
	logger := ctxlog.FromContext(ctx)

	if p.Inline != nil {
		e.printer.Step("shell", "%s, inline script", p.Label())
	} else {
		e.printer.Step("shell", "%s, path %s", p.Label(), p.Path)
		if _, err := os.Stat(naming.ExpandHome(p.Path, e.opts.HostHome)); err != nil {
			return configError(p, fmt.Errorf("script '%s' does not exist", p.Path))
		}
	}

	upload := naming.UploadPath(e.opts.TempDir)
	if p.UploadPath != "" {
		upload = naming.ExpandHome(p.UploadPath, e.opts.HostHome)
	}

	defer func() {
		if err := os.Remove(upload); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Failed to remove uploaded script", "path", upload, "error", err)
			return
		}
		logger.Debug("Removed uploaded script", "path", upload)
	}()

	if err := e.materialize(p, upload); err != nil {
		return err
	}
	if _, err := os.Stat(upload); err != nil {
		return configError(p, fmt.Errorf("script not accessible at '%s'", upload))
	}
	if err := os.Chmod(upload, 0o755); err != nil {
		return &ExecutionError{Provision: p.Label(), ExitCode: -1,
			Err: fmt.Errorf("failed to mark script executable: %w", err)}
	}

	sudo := ""
	if p.IsPrivileged() {
		sudo = e.opts.Sudo
	}
	line := CommandLine(sudo, upload, p.Args)
	logger.Info("Running shell provisioner", "command", line, "env", len(p.Env))

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	err := e.runner.Run(ctx, Command{
		Line:   line,
		Env:    Environ(os.Environ(), p.Env),
		Stdout: e.printer.Writer(),
		Stderr: e.opts.Stderr,
	})
	if err != nil {
		return &ExecutionError{Provision: p.Label(), ExitCode: exitCode(err), Err: err}
	}
	return nil
}

// materialize writes the script for p to upload. Inline bodies get a bash
// interpreter line; path scripts are copied byte for byte.
func (e *Executor) materialize(p *v1alpha1.Provision, upload string) error {
	if p.Inline != nil {
		if err := os.WriteFile(upload, []byte(shebang+*p.Inline), 0o600); err != nil {
			return &ExecutionError{Provision: p.Label(), ExitCode: -1,
				Err: fmt.Errorf("failed to write script: %w", err)}
		}
		return nil
	}

	if err := copyFile(naming.ExpandHome(p.Path, e.opts.HostHome), upload, 0o600); err != nil {
		return &ExecutionError{Provision: p.Label(), ExitCode: -1, Err: err}
	}
	return nil
}

func configError(p *v1alpha1.Provision, err error) error {
	kind := string(p.Kind)
	if kind == "" {
		kind = "provision"
	}
	return &ProvisionConfigError{Kind: kind, Name: p.Name, Err: err}
}

// copyFile copies src to dst, truncating dst.
func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}
