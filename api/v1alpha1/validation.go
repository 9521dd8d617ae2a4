package v1alpha1

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/jbweber/kiln/internal/naming"
)

// Validate checks every machine in the configuration.
// Does not touch the filesystem.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Machines))
	for i := range c.Machines {
		m := &c.Machines[i]
		if err := m.Validate(); err != nil {
			if m.Name == "" {
				return fmt.Errorf("machines[%d]: %w", i, err)
			}
			return fmt.Errorf("machine %q: %w", m.Name, err)
		}
		if seen[m.Name] {
			return fmt.Errorf("machines[%d]: duplicate machine name %q", i, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// Validate checks the structure of a resolved machine.
func (m *Machine) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Inherit != "" {
		return fmt.Errorf("inherit %q was not resolved", m.Inherit)
	}

	for _, name := range m.Providers.Keys() {
		if err := ProviderKind(name).Validate(); err != nil {
			return fmt.Errorf("providers: %w", err)
		}
	}

	for i := range m.Networks {
		if err := m.Networks[i].Kind.Validate(); err != nil {
			return fmt.Errorf("networks[%d]: %w", i, err)
		}
	}

	for i := range m.SyncedFolders {
		if err := m.SyncedFolders[i].Validate(); err != nil {
			return fmt.Errorf("synced_folders[%d]: %w", i, err)
		}
	}

	for i := range m.Provisions {
		if err := m.Provisions[i].Validate(); err != nil {
			return fmt.Errorf("provisions[%d]: %w", i, err)
		}
	}

	return nil
}

// Validate checks that both ends of the folder are named.
func (s *SyncedFolder) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("missing 'host' parameter")
	}
	if s.Guest == "" {
		return fmt.Errorf("missing 'guest' parameter")
	}
	return nil
}

// Validate checks the fields required by the provision's kind. Whether the
// referenced files exist is only checked when the step runs.
func (p *Provision) Validate() error {
	if err := p.Kind.Validate(); err != nil {
		return err
	}

	switch p.EffectiveRun() {
	case RunOnce, RunAlways, RunNever:
	default:
		return fmt.Errorf("run must be once, always or never, got %q", p.Run)
	}

	switch p.Kind {
	case ProvisionFile:
		if p.Source == "" {
			return fmt.Errorf("missing attribute 'source'")
		}
		if p.Destination == "" && p.Target == "" {
			return fmt.Errorf("missing attribute 'destination'")
		}
	case ProvisionShell:
		if p.Inline == nil && p.Path == "" {
			return fmt.Errorf("missing attribute 'inline' or 'path'")
		}
		if p.Inline != nil && p.Path != "" {
			return fmt.Errorf("cannot specify both 'inline' and 'path'")
		}
	}
	return nil
}

// CheckKey parses the private key, when one is configured. A leading "~"
// expands to home. Keys protected by a passphrase are accepted without
// being decrypted.
func (s *SSH) CheckKey(home string) error {
	if s.PrivateKeyPath == "" {
		return nil
	}
	data, err := os.ReadFile(naming.ExpandHome(s.PrivateKeyPath, home))
	if err != nil {
		return fmt.Errorf("failed to read private_key_path: %w", err)
	}
	if _, err := ssh.ParseRawPrivateKey(data); err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil
		}
		return fmt.Errorf("private_key_path %q is not a valid SSH private key: %w", s.PrivateKeyPath, err)
	}
	return nil
}
