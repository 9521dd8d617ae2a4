package provision

import (
	"context"
	"sync"
)

// mockCommandRunner is a mock implementation of the commandRunner interface for testing.
type mockCommandRunner struct {
	mu sync.Mutex

	// Configurable behavior
	runFunc func(ctx context.Context, cmd Command) error

	// Call tracking
	runCalls []Command
}

// newMockCommandRunner creates a new mock runner where every command succeeds.
func newMockCommandRunner() *mockCommandRunner {
	m := &mockCommandRunner{}

	// Default: command exits zero
	m.runFunc = func(ctx context.Context, cmd Command) error {
		return nil
	}

	return m
}

func (m *mockCommandRunner) Run(ctx context.Context, cmd Command) error {
	m.mu.Lock()
	m.runCalls = append(m.runCalls, cmd)
	m.mu.Unlock()
	return m.runFunc(ctx, cmd)
}

func (m *mockCommandRunner) calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.runCalls...)
}
