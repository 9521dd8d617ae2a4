package status

import (
	"testing"

	"github.com/jbweber/kiln/api/v1alpha1"
)

func newRun(phase v1alpha1.RunPhase) *v1alpha1.ProvisionRun {
	run := v1alpha1.NewProvisionRun(&v1alpha1.Machine{Name: "web"}, "demo")
	run.SetPhase(phase)
	return run
}

var allPhases = []v1alpha1.RunPhase{
	v1alpha1.RunPhaseSelected,
	v1alpha1.RunPhaseFoldersLinked,
	v1alpha1.RunPhaseProvisioning,
	v1alpha1.RunPhaseSucceeded,
	v1alpha1.RunPhaseFailed,
	v1alpha1.RunPhaseFoldersUnlinked,
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name       string
		transition func(*v1alpha1.ProvisionRun) error
		target     v1alpha1.RunPhase
		allowed    []v1alpha1.RunPhase
	}{
		{
			name:       "FoldersLinked",
			transition: TransitionToFoldersLinked,
			target:     v1alpha1.RunPhaseFoldersLinked,
			allowed:    []v1alpha1.RunPhase{v1alpha1.RunPhaseSelected},
		},
		{
			name:       "Provisioning",
			transition: TransitionToProvisioning,
			target:     v1alpha1.RunPhaseProvisioning,
			allowed:    []v1alpha1.RunPhase{v1alpha1.RunPhaseFoldersLinked},
		},
		{
			name:       "Succeeded",
			transition: TransitionToSucceeded,
			target:     v1alpha1.RunPhaseSucceeded,
			allowed:    []v1alpha1.RunPhase{v1alpha1.RunPhaseProvisioning},
		},
		{
			name: "Failed",
			transition: func(run *v1alpha1.ProvisionRun) error {
				return TransitionToFailed(run, "StepFailed", "boom")
			},
			target: v1alpha1.RunPhaseFailed,
			allowed: []v1alpha1.RunPhase{
				v1alpha1.RunPhaseSelected,
				v1alpha1.RunPhaseFoldersLinked,
				v1alpha1.RunPhaseProvisioning,
			},
		},
		{
			name:       "FoldersUnlinked",
			transition: TransitionToFoldersUnlinked,
			target:     v1alpha1.RunPhaseFoldersUnlinked,
			allowed:    []v1alpha1.RunPhase{v1alpha1.RunPhaseSucceeded, v1alpha1.RunPhaseFailed},
		},
	}

	for _, tt := range tests {
		allowed := make(map[v1alpha1.RunPhase]bool, len(tt.allowed))
		for _, p := range tt.allowed {
			allowed[p] = true
		}

		for _, from := range allPhases {
			t.Run(tt.name+" from "+string(from), func(t *testing.T) {
				run := newRun(from)
				err := tt.transition(run)

				if !allowed[from] {
					if err == nil {
						t.Error("Expected error but got nil")
					}
					if run.GetPhase() != from {
						t.Errorf("Phase should not change on error, got %s", run.GetPhase())
					}
					return
				}
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if run.GetPhase() != tt.target {
					t.Errorf("Expected phase %s, got %s", tt.target, run.GetPhase())
				}
			})
		}
	}
}

func TestRunLifecycle(t *testing.T) {
	t.Run("success path", func(t *testing.T) {
		run := newRun(v1alpha1.RunPhaseSelected)
		run.AddLink("/home/me/src")

		steps := []func(*v1alpha1.ProvisionRun) error{
			TransitionToFoldersLinked,
			TransitionToProvisioning,
			TransitionToSucceeded,
		}
		for _, step := range steps {
			if err := step(run); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		}
		if !IsConditionTrue(run, v1alpha1.ConditionFoldersLinked) {
			t.Error("Expected FoldersLinked condition True while linked")
		}
		if !Succeeded(run) {
			t.Error("Expected run to have succeeded")
		}

		if err := TransitionToFoldersUnlinked(run); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !IsTerminal(run.GetPhase()) {
			t.Error("Expected FoldersUnlinked to be terminal")
		}
		if !IsConditionFalse(run, v1alpha1.ConditionFoldersLinked) {
			t.Error("Expected FoldersLinked condition False after unlinking")
		}
		if run.Status.CompletionTime.IsZero() {
			t.Error("Expected CompletionTime to be set")
		}
	})

	t.Run("setup failure", func(t *testing.T) {
		run := newRun(v1alpha1.RunPhaseSelected)
		if err := TransitionToFailed(run, "SyncedFolderError", "host missing"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		cond := GetCondition(run, v1alpha1.ConditionProvisioned)
		if cond == nil || cond.Reason != "SyncedFolderError" || cond.Message != "host missing" {
			t.Errorf("Unexpected Provisioned condition: %+v", cond)
		}
		if Succeeded(run) {
			t.Error("Failed run reported success")
		}
		if err := TransitionToFoldersUnlinked(run); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})
}

func TestIsTerminal(t *testing.T) {
	for _, phase := range allPhases {
		want := phase == v1alpha1.RunPhaseFoldersUnlinked
		if got := IsTerminal(phase); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", phase, got, want)
		}
	}
}
