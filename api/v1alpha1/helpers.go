package v1alpha1

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jbweber/kiln/internal/document"
)

const (
	// GroupName is the API group for kiln resources.
	GroupName = "kiln.jbweber.dev"

	// Version is the API version.
	Version = "v1alpha1"

	// ProvisionRunKind is the kind string for ProvisionRun resources.
	ProvisionRunKind = "ProvisionRun"
)

// DecodeConfig builds the typed view of a merged configuration. The
// machines must already be resolved. Machines are decoded one at a time so
// a decoding error names its machine.
func DecodeConfig(doc *document.Map) (*Config, error) {
	var cfg Config
	if err := document.Decode(doc.Without("machines"), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	v, ok := doc.Get("machines")
	if !ok {
		return &cfg, nil
	}
	switch t := v.(type) {
	case document.Sequence:
		cfg.Machines = make([]Machine, 0, len(t))
		for i, item := range t {
			tree, ok := item.(*document.Map)
			if !ok {
				return nil, fmt.Errorf("failed to decode configuration: machines[%d] is not a mapping", i)
			}
			m, err := DecodeMachine(tree)
			if err != nil {
				return nil, err
			}
			cfg.Machines = append(cfg.Machines, *m)
		}
	case document.Scalar:
		if t.V != nil {
			return nil, fmt.Errorf("failed to decode configuration: machines must be a list")
		}
	default:
		return nil, fmt.Errorf("failed to decode configuration: machines must be a list")
	}
	return &cfg, nil
}

// DecodeMachine builds one typed machine from its resolved tree.
func DecodeMachine(doc *document.Map) (*Machine, error) {
	var m Machine
	if err := document.Decode(doc, &m); err != nil {
		name, _ := doc.String("name")
		return nil, fmt.Errorf("failed to decode machine %q: %w", name, err)
	}
	m.SetDefaults()
	return &m, nil
}

// SetDefaults fills in defaults that later stages rely on.
func (m *Machine) SetDefaults() {
	for i := range m.Provisions {
		if m.Provisions[i].Run == "" {
			m.Provisions[i].Run = RunOnce
		}
	}
}

// IsAutostart returns true if the machine is marked for autostart.
// Handles nil pointer by returning the default (false).
func (m *Machine) IsAutostart() bool {
	return m.Autostart != nil && *m.Autostart
}

// DisplayName returns the name handed to providers: "<project>-<name>", or
// the bare name when no project is set.
func (m *Machine) DisplayName(project string) string {
	if project == "" {
		return m.Name
	}
	return project + "-" + m.Name
}

// IsPrivileged reports whether the step runs elevated. Only an explicit
// false disables elevation.
func (p *Provision) IsPrivileged() bool {
	return p.Privileged == nil || *p.Privileged
}

// EffectiveRun returns the run policy with its default applied.
func (p *Provision) EffectiveRun() RunPolicy {
	if p.Run == "" {
		return RunOnce
	}
	return p.Run
}

// Label is the name shown for the step, falling back to its kind.
func (p *Provision) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.Kind)
}

// Resolved returns a copy of a file provision with Target folded into
// Destination: when only Target is set, Destination becomes
// Target/<basename of Source>. Other provisions are copied unchanged.
func (p *Provision) Resolved() *Provision {
	out := p.DeepCopy()
	if out.Kind == ProvisionFile && out.Target != "" && out.Destination == "" {
		out.Destination = out.Target + "/" + filepath.Base(out.Source)
		out.Target = ""
	}
	return out
}

// NewProvisionRun creates a run for machine in phase Selected.
func NewProvisionRun(m *Machine, project string) *ProvisionRun {
	return &ProvisionRun{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       ProvisionRunKind,
		},
		ObjectMeta: ObjectMeta{
			Name:              m.Name,
			UID:               uuid.New().String(),
			CreationTimestamp: Now(),
		},
		Spec: ProvisionRunSpec{
			Machine:     m.Name,
			DisplayName: m.DisplayName(project),
		},
		Status: ProvisionRunStatus{
			Phase: RunPhaseSelected,
		},
	}
}

// SetPhase sets the run phase in status.
func (r *ProvisionRun) SetPhase(phase RunPhase) {
	r.Status.Phase = phase
}

// GetPhase returns the current run phase.
func (r *ProvisionRun) GetPhase() RunPhase {
	return r.Status.Phase
}

// AddLink records a synced-folder link created for the run.
func (r *ProvisionRun) AddLink(path string) {
	r.Status.Links = append(r.Status.Links, path)
}

// AddStep appends a provision step record.
func (r *ProvisionRun) AddStep(step StepRecord) {
	r.Status.Steps = append(r.Status.Steps, step)
}
