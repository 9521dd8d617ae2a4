// Package status manages ProvisionRun status: phase transitions, conditions
// and per-step records.
package status

import (
	"time"

	"github.com/jbweber/kiln/api/v1alpha1"
)

// SetCondition adds or updates a condition in the run status.
// LastTransitionTime only moves when the status changes.
func SetCondition(run *v1alpha1.ProvisionRun, condType string, status v1alpha1.ConditionStatus, reason, message string) {
	now := v1alpha1.Now()

	for i := range run.Status.Conditions {
		if run.Status.Conditions[i].Type == condType {
			existing := &run.Status.Conditions[i]
			if existing.Status != status {
				existing.LastTransitionTime = now
			}
			existing.Status = status
			existing.Reason = reason
			existing.Message = message
			return
		}
	}

	run.Status.Conditions = append(run.Status.Conditions, v1alpha1.Condition{
		Type:               condType,
		Status:             status,
		LastTransitionTime: now,
		Reason:             reason,
		Message:            message,
	})
}

// GetCondition returns a condition by type, or nil if not found.
func GetCondition(run *v1alpha1.ProvisionRun, condType string) *v1alpha1.Condition {
	for i := range run.Status.Conditions {
		if run.Status.Conditions[i].Type == condType {
			return &run.Status.Conditions[i]
		}
	}
	return nil
}

// IsConditionTrue returns true if the condition exists and has status True.
func IsConditionTrue(run *v1alpha1.ProvisionRun, condType string) bool {
	cond := GetCondition(run, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionTrue
}

// IsConditionFalse returns true if the condition exists and has status False.
func IsConditionFalse(run *v1alpha1.ProvisionRun, condType string) bool {
	cond := GetCondition(run, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionFalse
}

// StartStep returns a record for a step about to run.
func StartStep(p *v1alpha1.Provision) v1alpha1.StepRecord {
	return v1alpha1.StepRecord{
		Name:      p.Label(),
		Kind:      p.Kind,
		StartTime: v1alpha1.Now(),
	}
}

// FinishStep completes a record and appends it to the run. A nil err means
// the step succeeded.
func FinishStep(run *v1alpha1.ProvisionRun, step v1alpha1.StepRecord, err error) {
	step.CompletionTime = v1alpha1.Now()
	if err != nil {
		step.Result = v1alpha1.StepFailed
		step.Message = err.Error()
	} else {
		step.Result = v1alpha1.StepSucceeded
	}
	run.AddStep(step)
}

// SkipStep records a step that was not run, such as one with run: never.
func SkipStep(run *v1alpha1.ProvisionRun, p *v1alpha1.Provision, reason string) {
	now := v1alpha1.Now()
	run.AddStep(v1alpha1.StepRecord{
		Name:           p.Label(),
		Kind:           p.Kind,
		Result:         v1alpha1.StepSkipped,
		Message:        reason,
		StartTime:      now,
		CompletionTime: now,
	})
}

// StepDuration returns how long a finished step took.
func StepDuration(step v1alpha1.StepRecord) time.Duration {
	if step.StartTime.IsZero() || step.CompletionTime.IsZero() {
		return 0
	}
	return step.CompletionTime.Sub(step.StartTime.Time)
}
