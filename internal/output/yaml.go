package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/document"
	"github.com/jbweber/kiln/internal/provider"
)

// YAMLFormatter formats resources as YAML.
type YAMLFormatter struct{}

// FormatMachines formats machines as a YAML sequence, the shape they take
// under the machines key of a configuration.
func (f *YAMLFormatter) FormatMachines(machines []v1alpha1.Machine) (string, error) {
	if len(machines) == 0 {
		return "", nil
	}

	data, err := yaml.Marshal(machines)
	if err != nil {
		return "", fmt.Errorf("failed to marshal machines to YAML: %w", err)
	}
	return string(data), nil
}

// FormatRuns formats runs as a YAML stream (multiple documents separated
// by ---).
func (f *YAMLFormatter) FormatRuns(runs []*v1alpha1.ProvisionRun) (string, error) {
	if len(runs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer

	for i, run := range runs {
		data, err := yaml.Marshal(run)
		if err != nil {
			return "", fmt.Errorf("failed to marshal run %s to YAML: %w", run.Name, err)
		}

		if i > 0 {
			buf.WriteString("---\n")
		}

		buf.Write(data)
	}

	return buf.String(), nil
}

// FormatPlan formats a machine plan as YAML.
func (f *YAMLFormatter) FormatPlan(plan *provider.MachinePlan) (string, error) {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to YAML: %w", err)
	}
	return string(data), nil
}

// FormatConfig formats a configuration document as YAML, keeping key order.
func (f *YAMLFormatter) FormatConfig(doc *document.Map) (string, error) {
	data, err := document.MarshalYAML(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	return string(data), nil
}
