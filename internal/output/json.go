package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/document"
	"github.com/jbweber/kiln/internal/provider"
)

// JSONFormatter formats resources as JSON.
type JSONFormatter struct{}

// FormatMachines formats machines as a JSON array.
func (f *JSONFormatter) FormatMachines(machines []v1alpha1.Machine) (string, error) {
	if len(machines) == 0 {
		return "[]\n", nil
	}
	return marshalIndent(machines, "machines")
}

// FormatRuns formats runs as a JSON object with an items array,
// mimicking the Kubernetes List format:
//
//	{
//	  "apiVersion": "kiln.jbweber.dev/v1alpha1",
//	  "kind": "ProvisionRunList",
//	  "items": [...]
//	}
func (f *JSONFormatter) FormatRuns(runs []*v1alpha1.ProvisionRun) (string, error) {
	if runs == nil {
		runs = []*v1alpha1.ProvisionRun{}
	}

	wrapper := map[string]interface{}{
		"apiVersion": v1alpha1.GroupName + "/" + v1alpha1.Version,
		"kind":       v1alpha1.ProvisionRunKind + "List",
		"items":      runs,
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(wrapper); err != nil {
		return "", fmt.Errorf("failed to marshal run list to JSON: %w", err)
	}

	return buf.String(), nil
}

// FormatPlan formats a machine plan as JSON.
func (f *JSONFormatter) FormatPlan(plan *provider.MachinePlan) (string, error) {
	return marshalIndent(plan, "plan")
}

// FormatConfig formats a configuration document as JSON, keeping key order.
func (f *JSONFormatter) FormatConfig(doc *document.Map) (string, error) {
	return marshalIndent(doc, "configuration")
}

func marshalIndent(v any, what string) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}
	return string(data) + "\n", nil
}
