package provider

import (
	"fmt"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/document"
)

// idPlaceholder in a vbmanage argument stands for the machine.
const idPlaceholder = ":id"

func virtualBox(name string, cfg *document.Map) (*Plan, error) {
	plan := &Plan{Kind: v1alpha1.ProviderVirtualBox, Name: name, Settings: document.NewMap()}
	plan.Settings.Set("name", document.Scalar{V: name})

	for _, key := range cfg.Keys() {
		v, _ := cfg.Get(key)
		switch key {
		case "name":
		case "gui", "linked_clone", "cpus", "memory":
			plan.Settings.Set(key, v)
		case "customize":
			m, ok := v.(*document.Map)
			if !ok {
				return nil, fmt.Errorf("virtualbox 'customize' must be a mapping")
			}
			for _, k := range m.Keys() {
				item, _ := m.Get(k)
				s, err := scalarString(item)
				if err != nil {
					return nil, fmt.Errorf("virtualbox customize %s: %w", k, err)
				}
				plan.Customize = append(plan.Customize, []string{"modifyvm", name, "--" + k, s})
			}
		case "vbmanage":
			seq, ok := v.(document.Sequence)
			if !ok {
				return nil, fmt.Errorf("virtualbox 'vbmanage' must be a list of commands")
			}
			for i, item := range seq {
				cmd, err := vbmanageCommand(name, item)
				if err != nil {
					return nil, fmt.Errorf("virtualbox vbmanage[%d]: %w", i, err)
				}
				plan.Customize = append(plan.Customize, cmd)
			}
		default:
			return nil, fmt.Errorf("bad virtualbox '%s' configuration", key)
		}
	}
	return plan, nil
}

func vbmanageCommand(name string, v document.Value) ([]string, error) {
	args, ok := v.(document.Sequence)
	if !ok {
		return nil, fmt.Errorf("command must be a list of arguments")
	}
	cmd := make([]string, 0, len(args))
	for _, a := range args {
		s, err := scalarString(a)
		if err != nil {
			return nil, err
		}
		if s == idPlaceholder {
			s = name
		}
		cmd = append(cmd, s)
	}
	return cmd, nil
}
