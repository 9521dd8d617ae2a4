// Package config resolves kiln's runtime settings from command-line values
// and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jbweber/kiln/internal/naming"
)

const (
	// EnvConfigs holds a comma-separated list of root configuration references.
	EnvConfigs = "KILN_CONFIGS"

	// EnvLegacyConfigs is read when EnvConfigs is unset.
	EnvLegacyConfigs = "VAGRANT_CONFIGS"

	// EnvTimeout bounds each provisioning command, e.g. "10m" or "600".
	EnvTimeout = "KILN_TIMEOUT"

	// EnvGuestHome overrides the guest home placeholder.
	EnvGuestHome = "KILN_GUEST_HOME"

	// EnvSudo overrides the elevation command, e.g. "sudo -E".
	EnvSudo = "KILN_SUDO"

	// DefaultRoot is used when no roots are configured anywhere.
	DefaultRoot = "./vagrant"
)

// Settings are the runtime settings for one invocation.
type Settings struct {
	// Roots are the root configuration references, in cascade order.
	Roots []string

	// Strict turns include cycles into errors.
	Strict bool

	// Timeout bounds each shell provisioning command. Zero means no bound.
	Timeout time.Duration

	// GuestHome is the guest path prefix mapped onto HostHome.
	GuestHome string

	// HostHome is the local home directory.
	HostHome string

	// Sudo elevates privileged shell steps.
	Sudo string
}

// Overrides are values given on the command line. Zero values defer to the
// environment.
type Overrides struct {
	Roots   []string
	Strict  bool
	Timeout time.Duration
}

// Load builds Settings from overrides and the process environment.
func Load(o Overrides) (*Settings, error) {
	return load(o, os.Getenv, os.UserHomeDir)
}

func load(o Overrides, getenv func(string) string, homeDir func() (string, error)) (*Settings, error) {
	s := &Settings{
		Roots:     o.Roots,
		Strict:    o.Strict,
		Timeout:   o.Timeout,
		GuestHome: getenv(EnvGuestHome),
		Sudo:      getenv(EnvSudo),
	}

	if len(s.Roots) == 0 {
		s.Roots = ParseRoots(getenv(EnvConfigs))
	}
	if len(s.Roots) == 0 {
		s.Roots = ParseRoots(getenv(EnvLegacyConfigs))
	}
	if len(s.Roots) == 0 {
		s.Roots = []string{DefaultRoot}
	}

	if s.Timeout == 0 {
		if raw := getenv(EnvTimeout); raw != "" {
			d, err := ParseTimeout(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", EnvTimeout, err)
			}
			s.Timeout = d
		}
	}

	if s.GuestHome == "" {
		s.GuestHome = naming.DefaultGuestHome
	}

	home, err := homeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}
	s.HostHome = home

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseRoots splits a comma-separated reference list, trimming entries and
// dropping empty ones.
func ParseRoots(s string) []string {
	var roots []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			roots = append(roots, part)
		}
	}
	return roots
}

// ParseTimeout accepts a Go duration ("90s", "10m") or whole seconds ("600").
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("timeout %q is neither a duration nor seconds", s)
	}
	return d, nil
}

// Validate checks the settings for errors.
func (s *Settings) Validate() error {
	if len(s.Roots) == 0 {
		return fmt.Errorf("at least one configuration root is required")
	}
	for i, r := range s.Roots {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("roots[%d] is empty", i)
		}
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", s.Timeout)
	}
	if s.GuestHome == "" || !strings.HasPrefix(s.GuestHome, "/") {
		return fmt.Errorf("guest home must be an absolute path, got %q", s.GuestHome)
	}
	return nil
}
