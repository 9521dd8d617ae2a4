// Package output provides formatters for displaying kiln resources
// in various formats (table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/document"
	"github.com/jbweber/kiln/internal/provider"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format for declarative configs.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter formats kiln resources for output.
type Formatter interface {
	// FormatMachines formats resolved machine definitions.
	FormatMachines(machines []v1alpha1.Machine) (string, error)

	// FormatRuns formats the reports of finished provisioning runs.
	FormatRuns(runs []*v1alpha1.ProvisionRun) (string, error)

	// FormatPlan formats the provider plan of one machine.
	FormatPlan(plan *provider.MachinePlan) (string, error)

	// FormatConfig formats a merged configuration document.
	FormatConfig(doc *document.Map) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	f := Format(format)
	switch f {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
