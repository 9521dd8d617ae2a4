package output

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/document"
	"github.com/jbweber/kiln/internal/provider"
)

// TableFormatter formats resources as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

func (f *TableFormatter) newWriter(buf *bytes.Buffer, header string) *tabwriter.Writer {
	w := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, header)
	}
	return w
}

// FormatMachines formats machines as a table, one row per machine.
func (f *TableFormatter) FormatMachines(machines []v1alpha1.Machine) (string, error) {
	if len(machines) == 0 {
		return "No machines found\n", nil
	}

	var buf bytes.Buffer
	w := f.newWriter(&buf, "NAME\tBOX\tAUTOSTART\tPROVIDERS\tPROVISIONS\tFOLDERS")

	for i := range machines {
		m := &machines[i]

		box := m.Box
		if box == "" {
			box = "-"
		}

		providers := strings.Join(m.Providers.Keys(), ",")
		if providers == "" {
			providers = "-"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%d\t%d\n",
			m.Name, box, m.IsAutostart(), providers, len(m.Provisions), len(m.SyncedFolders))
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatRuns formats run reports as a table.
func (f *TableFormatter) FormatRuns(runs []*v1alpha1.ProvisionRun) (string, error) {
	if len(runs) == 0 {
		return "No runs\n", nil
	}

	var buf bytes.Buffer
	w := f.newWriter(&buf, "MACHINE\tPHASE\tSTEPS\tFAILED\tDURATION")

	for _, run := range runs {
		phase := string(run.Status.Phase)
		if phase == "" {
			phase = "-"
		}

		steps, failed := 0, "-"
		for _, step := range run.Status.Steps {
			if step.Result == v1alpha1.StepSkipped {
				continue
			}
			steps++
			if step.Result == v1alpha1.StepFailed {
				failed = step.Name
				if failed == "" {
					failed = string(step.Kind)
				}
			}
		}

		duration := "-"
		if !run.Status.StartTime.IsZero() && !run.Status.CompletionTime.IsZero() {
			duration = formatElapsed(run.Status.CompletionTime.Sub(run.Status.StartTime.Time))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			run.Spec.Machine, phase, steps, failed, duration)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatPlan formats a machine plan as a table, one row per provider.
func (f *TableFormatter) FormatPlan(plan *provider.MachinePlan) (string, error) {
	if len(plan.Providers) == 0 {
		return fmt.Sprintf("No providers configured for %s\n", plan.Machine), nil
	}

	var buf bytes.Buffer
	w := f.newWriter(&buf, "PROVIDER\tNAME\tBOX\tNETWORKS\tDETAILS")

	box := plan.Box
	if box == "" {
		box = "-"
	}

	for _, p := range plan.Providers {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			p.Kind, p.Name, box, len(plan.Networks), planDetails(p))
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatConfig renders the document as YAML; a configuration has no
// tabular form.
func (f *TableFormatter) FormatConfig(doc *document.Map) (string, error) {
	return (&YAMLFormatter{}).FormatConfig(doc)
}

// planDetails summarizes the backend-specific part of a provider plan.
func planDetails(p provider.Plan) string {
	var parts []string
	if n := p.Settings.Len(); n > 0 {
		parts = append(parts, strconv.Itoa(n)+" settings")
	}
	if n := len(p.Customize); n > 0 {
		parts = append(parts, strconv.Itoa(n)+" vbmanage commands")
	}
	if n := len(p.VMX); n > 0 {
		parts = append(parts, strconv.Itoa(n)+" vmx keys")
	}
	if p.DomainXML != "" {
		parts = append(parts, "domain xml")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// formatElapsed formats a duration as a compact human-readable string.
// Examples: "5s", "2m", "3h", "4d"
func formatElapsed(d time.Duration) string {
	if d < 0 {
		return "unknown"
	}

	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	return fmt.Sprintf("%dd", hours/24)
}
