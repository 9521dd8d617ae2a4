package vm

import (
	"context"
	"sync"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/cascade"
	"github.com/jbweber/kiln/internal/document"
)

// mockConfigResolver is a mock implementation of the configResolver interface for testing.
type mockConfigResolver struct {
	mu sync.Mutex

	// Configurable behavior
	resolveFunc func(ctx context.Context, roots []string) (*cascade.Result, error)

	// Call tracking
	resolveCalls [][]string
}

// newMockConfigResolver creates a resolver that returns doc as the merged
// configuration.
func newMockConfigResolver(doc *document.Map) *mockConfigResolver {
	m := &mockConfigResolver{}
	m.resolveFunc = func(ctx context.Context, roots []string) (*cascade.Result, error) {
		return &cascade.Result{Config: doc, Order: []string{"/cfg/vagrant.yml"}}, nil
	}
	return m
}

func (m *mockConfigResolver) Resolve(ctx context.Context, roots []string) (*cascade.Result, error) {
	m.mu.Lock()
	m.resolveCalls = append(m.resolveCalls, roots)
	m.mu.Unlock()
	return m.resolveFunc(ctx, roots)
}

// mockConfigValidator is a mock implementation of the configValidator interface for testing.
type mockConfigValidator struct {
	mu sync.Mutex

	validateFunc func(doc *document.Map) error

	validateCalls []*document.Map
}

// newMockConfigValidator creates a validator that accepts everything.
func newMockConfigValidator() *mockConfigValidator {
	m := &mockConfigValidator{}
	m.validateFunc = func(doc *document.Map) error {
		return nil
	}
	return m
}

func (m *mockConfigValidator) Validate(doc *document.Map) error {
	m.mu.Lock()
	m.validateCalls = append(m.validateCalls, doc)
	m.mu.Unlock()
	return m.validateFunc(doc)
}

// mockMachineProvisioner is a mock implementation of the machineProvisioner interface for testing.
type mockMachineProvisioner struct {
	mu sync.Mutex

	runFunc func(ctx context.Context, m *v1alpha1.Machine, project string) (*v1alpha1.ProvisionRun, error)

	// runCalls holds the names of the machines run, in order.
	runCalls []string
}

// newMockMachineProvisioner creates a provisioner whose runs all succeed.
func newMockMachineProvisioner() *mockMachineProvisioner {
	p := &mockMachineProvisioner{}
	p.runFunc = func(ctx context.Context, m *v1alpha1.Machine, project string) (*v1alpha1.ProvisionRun, error) {
		run := v1alpha1.NewProvisionRun(m, project)
		run.SetPhase(v1alpha1.RunPhaseFoldersUnlinked)
		return run, nil
	}
	return p
}

func (p *mockMachineProvisioner) Run(ctx context.Context, m *v1alpha1.Machine, project string) (*v1alpha1.ProvisionRun, error) {
	p.mu.Lock()
	p.runCalls = append(p.runCalls, m.Name)
	p.mu.Unlock()
	return p.runFunc(ctx, m, project)
}
