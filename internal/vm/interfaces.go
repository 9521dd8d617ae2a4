package vm

import (
	"context"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/cascade"
	"github.com/jbweber/kiln/internal/document"
)

// configResolver merges a configuration cascade.
//
// In production, this is satisfied by *cascade.Resolver.
// In tests, this is satisfied by mock implementations.
type configResolver interface {
	// Resolve discovers and merges every document reachable from roots
	Resolve(ctx context.Context, roots []string) (*cascade.Result, error)
}

// configValidator checks a merged configuration against the schema.
//
// In production, this is satisfied by *schema.Validator.
// In tests, this is satisfied by mock implementations.
type configValidator interface {
	// Validate returns an error describing every schema violation
	Validate(doc *document.Map) error
}

// machineProvisioner runs the provision steps of one machine.
//
// In production, this is satisfied by *provision.Executor.
// In tests, this is satisfied by mock implementations.
type machineProvisioner interface {
	// Run links synced folders, runs every provision step and unlinks the
	// folders again. The returned run is never nil.
	Run(ctx context.Context, m *v1alpha1.Machine, project string) (*v1alpha1.ProvisionRun, error)
}
