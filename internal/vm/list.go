package vm

import (
	"context"
	"fmt"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/provider"
	"github.com/jbweber/kiln/internal/query"
	"github.com/jbweber/kiln/internal/selector"
)

// List returns every resolved machine in resolution order.
func (m *Manager) List(ctx context.Context) ([]v1alpha1.Machine, error) {
	env, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	return env.Config.Machines, nil
}

// Plan builds the provider plan of the named machine.
func (m *Manager) Plan(ctx context.Context, name string) (*provider.MachinePlan, error) {
	env, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := selector.Select(env.Config.Machines, []string{name})
	if err != nil {
		return nil, err
	}
	return provider.Build(&selected[0], env.Config.Project)
}

// Query evaluates a JSONPath expression against the merged configuration.
// The expression is checked before any document is read.
func (m *Manager) Query(ctx context.Context, expr string) ([]any, error) {
	e, err := query.Parse(expr)
	if err != nil {
		return nil, err
	}

	env, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	return e.Get(env.Document), nil
}

// Validate loads the configuration, plans every machine and parses any
// configured SSH private keys. Nothing else beyond the documents is read.
func (m *Manager) Validate(ctx context.Context) (*Environment, error) {
	env, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range env.Config.Machines {
		machine := &env.Config.Machines[i]
		if _, err := provider.Build(machine, env.Config.Project); err != nil {
			return nil, fmt.Errorf("machine %q: %w", machine.Name, err)
		}
		if machine.SSH != nil {
			if err := machine.SSH.CheckKey(m.settings.HostHome); err != nil {
				return nil, fmt.Errorf("machine %q: ssh: %w", machine.Name, err)
			}
		}
	}
	return env, nil
}
