// Package selector picks the machines a run acts on.
package selector

import (
	"errors"
	"fmt"

	"github.com/jbweber/kiln/api/v1alpha1"
)

// ErrNothingToProvision is returned when no names are requested and no
// machine is marked for autostart.
var ErrNothingToProvision = errors.New("No machines to bring up. This is usually because all machines are\n" +
	"set to `autostart: false`, which means you have to explicitly specify\n" +
	"the name of the machine to bring up.")

// MachineNotFoundError reports a requested name that no machine carries.
type MachineNotFoundError struct {
	Name string
}

func (e *MachineNotFoundError) Error() string {
	return fmt.Sprintf("The machine with the name '%s' was not found\nconfigured for this environment.", e.Name)
}

// Select returns the machines to provision. Without names it returns every
// autostart machine in declaration order. With names it returns exactly
// those machines, in the order requested.
func Select(machines []v1alpha1.Machine, names []string) ([]v1alpha1.Machine, error) {
	if len(names) == 0 {
		var selected []v1alpha1.Machine
		for _, m := range machines {
			if m.IsAutostart() {
				selected = append(selected, m)
			}
		}
		if len(selected) == 0 {
			return nil, ErrNothingToProvision
		}
		return selected, nil
	}

	byName := make(map[string]int, len(machines))
	for i, m := range machines {
		if _, ok := byName[m.Name]; !ok {
			byName[m.Name] = i
		}
	}

	selected := make([]v1alpha1.Machine, 0, len(names))
	for _, name := range names {
		i, ok := byName[name]
		if !ok {
			return nil, &MachineNotFoundError{Name: name}
		}
		selected = append(selected, machines[i])
	}
	return selected, nil
}
