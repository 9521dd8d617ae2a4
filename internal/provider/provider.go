// Package provider translates a machine's provider and network sections into
// the settings a hypervisor backend would apply. Plans are pure data; nothing
// in this package talks to a hypervisor.
package provider

import (
	"fmt"
	"strconv"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/document"
)

// Plan is the backend view of one provider section.
type Plan struct {
	Kind v1alpha1.ProviderKind `json:"kind" yaml:"kind"`

	// Name is the machine name handed to the backend. Defaults to the
	// machine's display name.
	Name string `json:"name" yaml:"name"`

	// Settings are direct provider attributes, in declaration order.
	Settings *document.Map `json:"settings,omitempty" yaml:"settings,omitempty"`

	// Customize holds VBoxManage argument vectors.
	Customize [][]string `json:"customize,omitempty" yaml:"customize,omitempty"`

	// VMX holds VMware .vmx entries.
	VMX map[string]string `json:"vmx,omitempty" yaml:"vmx,omitempty"`

	// DomainXML is the rendered libvirt domain.
	DomainXML string `json:"domainXML,omitempty" yaml:"domainXML,omitempty"`
}

// MachinePlan is everything a backend needs to bring up one machine.
type MachinePlan struct {
	Machine       string                  `json:"machine" yaml:"machine"`
	DisplayName   string                  `json:"displayName" yaml:"displayName"`
	Box           string                  `json:"box,omitempty" yaml:"box,omitempty"`
	BoxURL        string                  `json:"box_url,omitempty" yaml:"box_url,omitempty"`
	BoxVersion    string                  `json:"box_version,omitempty" yaml:"box_version,omitempty"`
	SSH           *v1alpha1.SSH           `json:"ssh,omitempty" yaml:"ssh,omitempty"`
	Providers     []Plan                  `json:"providers,omitempty" yaml:"providers,omitempty"`
	Networks      []v1alpha1.Network      `json:"networks,omitempty" yaml:"networks,omitempty"`
	SyncedFolders []v1alpha1.SyncedFolder `json:"synced_folders,omitempty" yaml:"synced_folders,omitempty"`
}

// Build plans every provider and network of m. Providers keep their
// declaration order.
func Build(m *v1alpha1.Machine, project string) (*MachinePlan, error) {
	networks, err := NormalizeNetworks(m.Networks)
	if err != nil {
		return nil, err
	}

	plan := &MachinePlan{
		Machine:       m.Name,
		DisplayName:   m.DisplayName(project),
		Box:           m.Box,
		BoxURL:        m.BoxURL,
		BoxVersion:    m.BoxVersion,
		SSH:           m.SSH,
		Networks:      networks,
		SyncedFolders: m.SyncedFolders,
	}

	for _, key := range m.Providers.Keys() {
		v, _ := m.Providers.Get(key)
		cfg, err := sectionOf(key, v)
		if err != nil {
			return nil, err
		}
		p, err := BuildProvider(v1alpha1.ProviderKind(key), plan.DisplayName, cfg, networks)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", key, err)
		}
		plan.Providers = append(plan.Providers, *p)
	}
	return plan, nil
}

// BuildProvider plans a single provider section. displayName is used when
// the section sets no name of its own.
func BuildProvider(kind v1alpha1.ProviderKind, displayName string, cfg *document.Map, networks []v1alpha1.Network) (*Plan, error) {
	if cfg == nil {
		cfg = document.NewMap()
	}
	name := displayName
	if n, ok := cfg.String("name"); ok && n != "" {
		name = n
	}

	switch kind {
	case v1alpha1.ProviderVirtualBox:
		return virtualBox(name, cfg)
	case v1alpha1.ProviderVMwareFusion, v1alpha1.ProviderVMwareWorkstation:
		return vmware(kind, name, cfg)
	case v1alpha1.ProviderParallels:
		return parallels(name, cfg), nil
	case v1alpha1.ProviderLibvirt:
		return libvirt(name, cfg, networks)
	default:
		return nil, &v1alpha1.UnsupportedKindError{Category: "provider", Kind: string(kind)}
	}
}

// sectionOf returns a provider's settings. A null section means defaults.
func sectionOf(key string, v document.Value) (*document.Map, error) {
	switch t := v.(type) {
	case *document.Map:
		return t, nil
	case document.Scalar:
		if t.V == nil {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("provider %s: settings must be a mapping", key)
}

// scalarString renders a scalar setting the way a backend command line
// expects it.
func scalarString(v document.Value) (string, error) {
	s, ok := v.(document.Scalar)
	if !ok {
		return "", fmt.Errorf("expected a scalar value")
	}
	switch t := s.V.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return fmt.Sprint(t), nil
	}
}

// intSetting reads a whole number from cfg, falling back to def.
func intSetting(cfg *document.Map, key string, def int) (int, error) {
	v, ok := cfg.Get(key)
	if !ok {
		return def, nil
	}
	s, ok := v.(document.Scalar)
	if !ok {
		return 0, fmt.Errorf("'%s' must be a number", key)
	}
	switch t := s.V.(type) {
	case int64:
		return int(t), nil
	case uint64:
		return int(t), nil
	case float64:
		if t == float64(int(t)) {
			return int(t), nil
		}
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("'%s' must be a whole number, got %v", key, s.V)
}
