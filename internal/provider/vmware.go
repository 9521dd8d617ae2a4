package provider

import (
	"fmt"
	"strings"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/document"
)

// vmxKeys maps friendly setting names onto .vmx keys. Other keys are
// written as given.
var vmxKeys = map[string]string{
	"name":   "displayName",
	"memory": "memsize",
	"cpus":   "numvcpus",
	"ostype": "guestOS",
}

func vmware(kind v1alpha1.ProviderKind, name string, cfg *document.Map) (*Plan, error) {
	plan := &Plan{Kind: kind, Name: name, VMX: map[string]string{"displayName": name}}

	for _, key := range cfg.Keys() {
		if key == "name" {
			continue
		}
		v, _ := cfg.Get(key)
		s, err := scalarString(v)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, key, err)
		}
		if key == "ostype" {
			s = strings.ReplaceAll(s, "_", "-")
		}
		vmxKey, ok := vmxKeys[key]
		if !ok {
			vmxKey = key
		}
		plan.VMX[vmxKey] = s
	}
	return plan, nil
}

func parallels(name string, cfg *document.Map) *Plan {
	settings := document.NewMap()
	settings.Set("name", document.Scalar{V: name})
	for _, key := range cfg.Keys() {
		if key == "name" {
			continue
		}
		v, _ := cfg.Get(key)
		settings.Set(key, v)
	}
	return &Plan{Kind: v1alpha1.ProviderParallels, Name: name, Settings: settings}
}
