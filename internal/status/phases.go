package status

import (
	"fmt"

	"github.com/jbweber/kiln/api/v1alpha1"
)

// TransitionToFoldersLinked moves the run to FoldersLinked.
// This should be called once every synced-folder link exists.
func TransitionToFoldersLinked(run *v1alpha1.ProvisionRun) error {
	if run.GetPhase() != v1alpha1.RunPhaseSelected {
		return fmt.Errorf("cannot transition to FoldersLinked from phase %s", run.GetPhase())
	}

	run.SetPhase(v1alpha1.RunPhaseFoldersLinked)
	SetCondition(run, v1alpha1.ConditionFoldersLinked, v1alpha1.ConditionTrue, "FoldersLinked",
		fmt.Sprintf("%d synced folder link(s) created", len(run.Status.Links)))
	return nil
}

// TransitionToProvisioning moves the run to Provisioning.
// This should be called before the first provision step starts.
func TransitionToProvisioning(run *v1alpha1.ProvisionRun) error {
	if run.GetPhase() != v1alpha1.RunPhaseFoldersLinked {
		return fmt.Errorf("cannot transition to Provisioning from phase %s", run.GetPhase())
	}

	run.SetPhase(v1alpha1.RunPhaseProvisioning)
	SetCondition(run, v1alpha1.ConditionProvisioned, v1alpha1.ConditionFalse, "Provisioning", "Provision steps in progress")
	return nil
}

// TransitionToSucceeded moves the run to Succeeded once every step passed.
func TransitionToSucceeded(run *v1alpha1.ProvisionRun) error {
	if run.GetPhase() != v1alpha1.RunPhaseProvisioning {
		return fmt.Errorf("cannot transition to Succeeded from phase %s", run.GetPhase())
	}

	run.SetPhase(v1alpha1.RunPhaseSucceeded)
	SetCondition(run, v1alpha1.ConditionProvisioned, v1alpha1.ConditionTrue, "ProvisionSucceeded",
		fmt.Sprintf("%d provision step(s) completed", len(run.Status.Steps)))
	return nil
}

// TransitionToFailed moves the run to Failed. Setup failures arrive from
// Selected or FoldersLinked, step failures from Provisioning.
func TransitionToFailed(run *v1alpha1.ProvisionRun, reason, message string) error {
	switch run.GetPhase() {
	case v1alpha1.RunPhaseSelected, v1alpha1.RunPhaseFoldersLinked, v1alpha1.RunPhaseProvisioning:
	default:
		return fmt.Errorf("cannot transition to Failed from phase %s", run.GetPhase())
	}

	run.SetPhase(v1alpha1.RunPhaseFailed)
	SetCondition(run, v1alpha1.ConditionProvisioned, v1alpha1.ConditionFalse, reason, message)
	return nil
}

// TransitionToFoldersUnlinked moves a finished run to its last phase after
// the emulation links are removed.
func TransitionToFoldersUnlinked(run *v1alpha1.ProvisionRun) error {
	phase := run.GetPhase()
	if phase != v1alpha1.RunPhaseSucceeded && phase != v1alpha1.RunPhaseFailed {
		return fmt.Errorf("cannot transition to FoldersUnlinked from phase %s", phase)
	}

	run.SetPhase(v1alpha1.RunPhaseFoldersUnlinked)
	run.Status.CompletionTime = v1alpha1.Now()
	SetCondition(run, v1alpha1.ConditionFoldersLinked, v1alpha1.ConditionFalse, "FoldersUnlinked", "Synced folder links removed")
	return nil
}

// IsTerminal returns true once the run has reached its last phase.
func IsTerminal(phase v1alpha1.RunPhase) bool {
	return phase == v1alpha1.RunPhaseFoldersUnlinked
}

// Succeeded returns true if every provision step of the run passed.
func Succeeded(run *v1alpha1.ProvisionRun) bool {
	return IsConditionTrue(run, v1alpha1.ConditionProvisioned)
}
