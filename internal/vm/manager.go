package vm

import (
	"context"
	"fmt"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/cascade"
	"github.com/jbweber/kiln/internal/config"
	"github.com/jbweber/kiln/internal/console"
	"github.com/jbweber/kiln/internal/ctxlog"
	"github.com/jbweber/kiln/internal/document"
	"github.com/jbweber/kiln/internal/inherit"
	"github.com/jbweber/kiln/internal/provision"
	"github.com/jbweber/kiln/internal/schema"
)

// Environment is one fully loaded configuration.
type Environment struct {
	// Document is the merged configuration with inheritance flattened.
	Document *document.Map

	// Config is the typed view of Document.
	Config *v1alpha1.Config

	// Sources are the absolute paths of every merged document, in merge order.
	Sources []string

	// Cycles are the include chains skipped while merging.
	Cycles [][]string
}

// Manager runs kiln operations against the configuration named by its
// settings.
type Manager struct {
	settings  *config.Settings
	resolver  configResolver
	validator configValidator
	executor  machineProvisioner
}

// NewManager wires a Manager from settings. Provisioning progress is
// printed to printer.
func NewManager(settings *config.Settings, printer *console.Printer) (*Manager, error) {
	validator, err := schema.New()
	if err != nil {
		return nil, err
	}

	resolver := cascade.NewResolver(cascade.Options{Strict: settings.Strict})
	executor := provision.NewExecutor(printer, provision.Options{
		GuestHome: settings.GuestHome,
		HostHome:  settings.HostHome,
		Sudo:      settings.Sudo,
		Timeout:   settings.Timeout,
	})

	return newManagerWithDeps(settings, resolver, validator, executor), nil
}

// newManagerWithDeps creates a Manager with injected dependencies.
// This allows for testing by accepting interfaces instead of concrete types.
func newManagerWithDeps(settings *config.Settings, resolver configResolver, validator configValidator, executor machineProvisioner) *Manager {
	return &Manager{
		settings:  settings,
		resolver:  resolver,
		validator: validator,
		executor:  executor,
	}
}

// Load merges the configuration cascade, flattens machine inheritance and
// validates the result.
//
// The steps are:
//  1. Resolve includes and deep-merge every document
//  2. Resolve machine inheritance
//  3. Check the merged tree against the schema
//  4. Decode and validate the typed configuration
func (m *Manager) Load(ctx context.Context) (*Environment, error) {
	logger := ctxlog.FromContext(ctx)

	logger.Debug("Resolving configuration cascade", "roots", m.settings.Roots)
	res, err := m.resolver.Resolve(ctx, m.settings.Roots)
	if err != nil {
		return nil, err
	}

	machines, err := inherit.MachineList(res.Config)
	if err != nil {
		return nil, err
	}
	resolved, err := inherit.Resolve(ctx, machines)
	if err != nil {
		return nil, err
	}
	doc := withMachines(res.Config, resolved)

	if err := m.validator.Validate(doc); err != nil {
		return nil, err
	}

	cfg, err := v1alpha1.DecodeConfig(doc)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("Configuration loaded", "documents", len(res.Order), "machines", len(cfg.Machines))
	return &Environment{
		Document: doc,
		Config:   cfg,
		Sources:  res.Order,
		Cycles:   res.Cycles,
	}, nil
}

// withMachines returns a copy of cfg whose machine list is replaced by
// machines, keeping the key order of cfg. A configuration without a
// machines key is returned unchanged.
func withMachines(cfg *document.Map, machines []*document.Map) *document.Map {
	if !cfg.Has(inherit.MachinesKey) {
		return cfg
	}

	seq := make(document.Sequence, len(machines))
	for i, machine := range machines {
		seq[i] = machine
	}

	out := document.NewMap()
	for _, key := range cfg.Keys() {
		if key == inherit.MachinesKey {
			out.Set(key, seq)
			continue
		}
		v, _ := cfg.Get(key)
		out.Set(key, v)
	}
	return out
}
