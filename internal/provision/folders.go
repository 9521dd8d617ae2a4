package provision

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/ctxlog"
	"github.com/jbweber/kiln/internal/naming"
)

// linkFolders emulates every synced folder with a symlink from the guest
// path's local equivalent to the host directory. Links are recorded on the
// run. When a folder fails, links created so far are removed again.
func (e *Executor) linkFolders(ctx context.Context, run *v1alpha1.ProvisionRun, folders []v1alpha1.SyncedFolder) error {
	logger := ctxlog.FromContext(ctx)

	for i := range folders {
		link, host, err := e.linkFolder(&folders[i])
		if err != nil {
			e.unlinkFolders(ctx, run.Status.Links)
			run.Status.Links = nil
			return err
		}
		if link == "" {
			continue
		}
		logger.Info("Linked synced folder", "link", link, "host", host)
		e.printer.Step("synced folder", "%s -> %s", link, host)
		run.AddLink(link)
	}
	return nil
}

// linkFolder returns the created link, or an empty link when an equivalent
// one already exists.
func (e *Executor) linkFolder(sf *v1alpha1.SyncedFolder) (link, host string, err error) {
	if err := sf.Validate(); err != nil {
		return "", "", &SyncedFolderError{Host: sf.Host, Guest: sf.Guest, Reason: err.Error()}
	}

	host, err = filepath.Abs(naming.ExpandHome(sf.Host, e.opts.HostHome))
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve host path %s: %w", sf.Host, err)
	}
	info, err := os.Stat(host)
	if err != nil {
		return "", "", &SyncedFolderError{Host: sf.Host, Guest: sf.Guest,
			Reason: fmt.Sprintf("host directory '%s' does not exist", sf.Host)}
	}
	if !info.IsDir() {
		return "", "", &SyncedFolderError{Host: sf.Host, Guest: sf.Guest,
			Reason: fmt.Sprintf("host '%s' is not a directory", sf.Host)}
	}

	link, err = naming.EmulationPath(sf.Guest, e.opts.GuestHome, e.opts.HostHome)
	if err != nil {
		return "", "", fmt.Errorf("failed to map guest path %s: %w", sf.Guest, err)
	}

	if _, err := os.Lstat(link); err == nil {
		if samePath(link, host) {
			return "", host, nil
		}
		return "", "", &SyncedFolderError{Host: sf.Host, Guest: sf.Guest,
			Reason: fmt.Sprintf("guest '%s' conflicts with existing file '%s', aborting", sf.Guest, link)}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", "", fmt.Errorf("failed to inspect %s: %w", link, err)
	}

	if err := os.Symlink(host, link); err != nil {
		return "", "", &SyncedFolderError{Host: sf.Host, Guest: sf.Guest,
			Reason: fmt.Sprintf("failed to link '%s': %v", link, err)}
	}
	return link, host, nil
}

// unlinkFolders removes links created by linkFolders. Failures are logged
// and skipped.
func (e *Executor) unlinkFolders(ctx context.Context, links []string) {
	logger := ctxlog.FromContext(ctx)
	for _, link := range links {
		if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Failed to remove synced folder link", "link", link, "error", err)
			continue
		}
		logger.Debug("Removed synced folder link", "link", link)
	}
}

// samePath reports whether a and b resolve to the same real path.
func samePath(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		return false
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		return false
	}
	return ra == rb
}
