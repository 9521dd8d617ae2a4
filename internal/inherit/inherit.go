// Package inherit flattens machine inheritance. A machine entry naming a
// parent through its inherit key is deep-merged over the resolved parent,
// with the child's values winning, until every entry is self-contained.
package inherit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jbweber/kiln/internal/ctxlog"
	"github.com/jbweber/kiln/internal/document"
)

const (
	// MachinesKey holds the machine list in a merged configuration.
	MachinesKey = "machines"
	// NameKey identifies a machine.
	NameKey = "name"
	// InheritKey names the parent of a machine.
	InheritKey = "inherit"
)

var (
	// ErrUnresolvedInheritance is wrapped by every UnresolvedError.
	ErrUnresolvedInheritance = errors.New("cannot resolve dependencies for all machines")

	// ErrMissingName is returned for a machine entry without a name.
	ErrMissingName = errors.New("machine is missing a name")
)

// Cause explains why a machine could not be resolved.
type Cause string

const (
	// CauseUnknownParent means the ancestor chain ends at a name that no
	// machine declares.
	CauseUnknownParent Cause = "unknown parent"
	// CauseCycle means the ancestor chain loops back on itself.
	CauseCycle Cause = "inheritance cycle"
)

// Unresolved describes one machine left pending.
type Unresolved struct {
	Name   string
	Parent string
	Cause  Cause
}

// UnresolvedError lists every machine whose parent never became available.
type UnresolvedError struct {
	Machines []Unresolved
}

func (e *UnresolvedError) Error() string {
	parts := make([]string, 0, len(e.Machines))
	for _, m := range e.Machines {
		parts = append(parts, fmt.Sprintf("%s inherits %q (%s)", m.Name, m.Parent, m.Cause))
	}
	return fmt.Sprintf("%s: %s", ErrUnresolvedInheritance, strings.Join(parts, ", "))
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolvedInheritance
}

// DuplicateMachineError reports two machine entries sharing a name.
type DuplicateMachineError struct {
	Name string
}

func (e *DuplicateMachineError) Error() string {
	return fmt.Sprintf("machine %q is defined more than once", e.Name)
}

// MachineList returns the machine entries of a merged configuration. A
// configuration without machines yields an empty list.
func MachineList(cfg *document.Map) ([]*document.Map, error) {
	v, ok := cfg.Get(MachinesKey)
	if !ok {
		return nil, nil
	}
	if s, ok := v.(document.Scalar); ok && s.V == nil {
		return nil, nil
	}
	seq, ok := v.(document.Sequence)
	if !ok {
		return nil, fmt.Errorf("%s must be a list of machines", MachinesKey)
	}
	machines := make([]*document.Map, 0, len(seq))
	for i, item := range seq {
		m, ok := item.(*document.Map)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a mapping", MachinesKey, i)
		}
		machines = append(machines, m)
	}
	return machines, nil
}

// pending is a machine waiting for its parent.
type pending struct {
	name   string
	parent string
	spec   *document.Map
}

// Resolve materializes every machine. Machines without a parent come first in
// input order, followed by derived machines in the order they were resolved.
// Entries that become resolvable during a pass are visible to later entries of
// the same pass.
func Resolve(ctx context.Context, machines []*document.Map) ([]*document.Map, error) {
	logger := ctxlog.FromContext(ctx)

	var (
		ready   []*document.Map
		waiting []pending
	)
	byName := make(map[string]*document.Map, len(machines))
	declared := make(map[string]bool, len(machines))

	for i, m := range machines {
		name, ok := m.String(NameKey)
		if !ok || name == "" {
			return nil, fmt.Errorf("machines[%d]: %w", i, ErrMissingName)
		}
		if declared[name] {
			return nil, &DuplicateMachineError{Name: name}
		}
		declared[name] = true

		if !m.Has(InheritKey) {
			ready = append(ready, m)
			byName[name] = m
			continue
		}
		parent, ok := m.String(InheritKey)
		if !ok {
			return nil, fmt.Errorf("machine %q: %s must be a machine name", name, InheritKey)
		}
		waiting = append(waiting, pending{name: name, parent: parent, spec: m})
	}

	for pass := 1; len(waiting) > 0; pass++ {
		before := len(waiting)
		var remaining []pending
		for _, p := range waiting {
			base, ok := byName[p.parent]
			if !ok {
				remaining = append(remaining, p)
				continue
			}
			resolved := document.MergeMaps(base, p.spec).Without(InheritKey)
			ready = append(ready, resolved)
			byName[p.name] = resolved
			logger.Debug("Resolved machine inheritance", "machine", p.name, "parent", p.parent, "pass", pass)
		}
		waiting = remaining
		if len(waiting) == before {
			return nil, &UnresolvedError{Machines: classify(waiting)}
		}
	}

	return ready, nil
}

// classify decides, for each stuck machine, whether its ancestor chain ends
// at an undeclared name or loops.
func classify(stuck []pending) []Unresolved {
	parentOf := make(map[string]string, len(stuck))
	for _, p := range stuck {
		parentOf[p.name] = p.parent
	}

	out := make([]Unresolved, 0, len(stuck))
	for _, p := range stuck {
		cause := CauseUnknownParent
		seen := map[string]bool{p.name: true}
		for cur := p.parent; ; {
			next, isPending := parentOf[cur]
			if !isPending {
				break
			}
			if seen[cur] {
				cause = CauseCycle
				break
			}
			seen[cur] = true
			cur = next
		}
		out = append(out, Unresolved{Name: p.name, Parent: p.parent, Cause: cause})
	}
	return out
}
