package v1alpha1

// ProvisionRun records one provisioning pass over one machine.
//
// Spec names the machine; Status is filled in as the run moves through its
// phases and is reported back to the user when the run ends.
type ProvisionRun struct {
	TypeMeta   `json:",inline" yaml:",inline"`
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec   ProvisionRunSpec   `json:"spec" yaml:"spec"`
	Status ProvisionRunStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// ProvisionRunSpec identifies the machine being provisioned.
type ProvisionRunSpec struct {
	// Machine is the machine's configured name.
	Machine string `json:"machine" yaml:"machine"`

	// DisplayName is the project-qualified name handed to providers.
	// +optional
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
}

// ProvisionRunStatus is the observed progress of a run.
type ProvisionRunStatus struct {
	// +optional
	Phase RunPhase `json:"phase,omitempty" yaml:"phase,omitempty"`

	// +optional
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Links are the synced-folder emulation links created for the run.
	// +optional
	Links []string `json:"links,omitempty" yaml:"links,omitempty"`

	// Steps has one record per provision step reached, in order.
	// +optional
	Steps []StepRecord `json:"steps,omitempty" yaml:"steps,omitempty"`

	// +optional
	StartTime Time `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	// +optional
	CompletionTime Time `json:"completionTime,omitempty" yaml:"completionTime,omitempty"`
}

// RunPhase is the lifecycle phase of a ProvisionRun:
//
//	Selected -> FoldersLinked -> Provisioning -> Succeeded | Failed -> FoldersUnlinked
//
// A failure while linking folders moves straight to Failed.
type RunPhase string

const (
	// RunPhaseSelected means the machine was chosen and nothing has run yet.
	RunPhaseSelected RunPhase = "Selected"

	// RunPhaseFoldersLinked means every synced-folder link is in place.
	RunPhaseFoldersLinked RunPhase = "FoldersLinked"

	// RunPhaseProvisioning means provision steps are executing.
	RunPhaseProvisioning RunPhase = "Provisioning"

	// RunPhaseSucceeded means every provision step succeeded.
	RunPhaseSucceeded RunPhase = "Succeeded"

	// RunPhaseFailed means setup or a provision step failed.
	RunPhaseFailed RunPhase = "Failed"

	// RunPhaseFoldersUnlinked means the emulation links were removed. It is
	// the last phase of every run.
	RunPhaseFoldersUnlinked RunPhase = "FoldersUnlinked"
)

// StepRecord is the outcome of one provision step.
type StepRecord struct {
	Name   string        `json:"name,omitempty" yaml:"name,omitempty"`
	Kind   ProvisionKind `json:"kind" yaml:"kind"`
	Result StepResult    `json:"result" yaml:"result"`

	// +optional
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	StartTime      Time `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	CompletionTime Time `json:"completionTime,omitempty" yaml:"completionTime,omitempty"`
}

// StepResult is the outcome of a provision step.
type StepResult string

const (
	StepSucceeded StepResult = "Succeeded"
	StepFailed    StepResult = "Failed"
	StepSkipped   StepResult = "Skipped"
)

// Condition types set on a ProvisionRun.
const (
	// ConditionFoldersLinked is True while emulation links exist.
	ConditionFoldersLinked = "FoldersLinked"

	// ConditionProvisioned is True once every provision step succeeded.
	ConditionProvisioned = "Provisioned"
)

// DeepCopy creates a deep copy of ProvisionRun.
func (in *ProvisionRun) DeepCopy() *ProvisionRun {
	if in == nil {
		return nil
	}
	out := new(ProvisionRun)
	out.TypeMeta = in.TypeMeta
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	out.Spec = in.Spec
	out.Status = *in.Status.DeepCopy()
	return out
}

// DeepCopy creates a deep copy of ProvisionRunStatus.
func (in *ProvisionRunStatus) DeepCopy() *ProvisionRunStatus {
	if in == nil {
		return nil
	}
	out := new(ProvisionRunStatus)
	*out = *in
	if in.Conditions != nil {
		out.Conditions = make([]Condition, len(in.Conditions))
		for i := range in.Conditions {
			out.Conditions[i] = *in.Conditions[i].DeepCopy()
		}
	}
	if in.Links != nil {
		out.Links = make([]string, len(in.Links))
		copy(out.Links, in.Links)
	}
	if in.Steps != nil {
		out.Steps = make([]StepRecord, len(in.Steps))
		copy(out.Steps, in.Steps)
	}
	return out
}
