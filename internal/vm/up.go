package vm

import (
	"context"

	"github.com/google/uuid"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/ctxlog"
	"github.com/jbweber/kiln/internal/selector"
)

// InvocationLabel is set on every run of one Up call to the same id.
const InvocationLabel = v1alpha1.GroupName + "/invocation"

// Up provisions the machines named by names, or every autostart machine
// when names is empty. Machines run one at a time in selection order, and
// the first failing machine stops the whole operation.
//
// The reports of every run attempted are returned, including the failed one.
func (m *Manager) Up(ctx context.Context, names []string) ([]*v1alpha1.ProvisionRun, error) {
	env, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := selector.Select(env.Config.Machines, names)
	if err != nil {
		return nil, err
	}

	invocation := uuid.New().String()
	logger := ctxlog.FromContext(ctx).With("invocation", invocation)
	ctx = ctxlog.WithLogger(ctx, logger)

	runs := make([]*v1alpha1.ProvisionRun, 0, len(selected))
	for i := range selected {
		machine := &selected[i]

		logger.Info("Provisioning machine", "machine", machine.Name, "position", i+1, "of", len(selected))
		run, err := m.executor.Run(ctx, machine, env.Config.Project)
		if run != nil {
			if run.Labels == nil {
				run.Labels = make(map[string]string)
			}
			run.Labels[InvocationLabel] = invocation
			runs = append(runs, run)
		}
		if err != nil {
			logger.Error("Machine failed, stopping", "machine", machine.Name, "error", err)
			return runs, err
		}
	}

	return runs, nil
}
