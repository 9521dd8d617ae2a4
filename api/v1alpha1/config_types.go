package v1alpha1

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/kiln/internal/document"
)

// Config is the typed view of a merged configuration.
type Config struct {
	// Project prefixes every machine's display name.
	// +optional
	Project string `json:"project,omitempty" yaml:"project,omitempty"`

	// Machines are the machine definitions, already flattened by inheritance.
	Machines []Machine `json:"machines" yaml:"machines"`
}

// Machine is one resolved machine definition.
type Machine struct {
	// Name uniquely identifies the machine.
	Name string `json:"name" yaml:"name"`

	// Inherit names a parent machine. It is always empty after inheritance
	// has been resolved.
	// +optional
	Inherit string `json:"inherit,omitempty" yaml:"inherit,omitempty"`

	// Autostart marks the machine for provisioning when no machine names are
	// requested. Defaults to false.
	// +optional
	Autostart *bool `json:"autostart,omitempty" yaml:"autostart,omitempty"`

	// +optional
	Box string `json:"box,omitempty" yaml:"box,omitempty"`
	// +optional
	BoxURL string `json:"box_url,omitempty" yaml:"box_url,omitempty"`
	// +optional
	BoxVersion string `json:"box_version,omitempty" yaml:"box_version,omitempty"`

	// SSH configures how the provider reaches the machine.
	// +optional
	SSH *SSH `json:"ssh,omitempty" yaml:"ssh,omitempty"`

	// Providers maps a provider kind to its settings, in declaration order.
	// +optional
	Providers *document.Map `json:"providers,omitempty" yaml:"providers,omitempty"`

	// +optional
	Networks []Network `json:"networks,omitempty" yaml:"networks,omitempty"`

	// +optional
	SyncedFolders []SyncedFolder `json:"synced_folders,omitempty" yaml:"synced_folders,omitempty"`

	// Provisions run in declaration order.
	// +optional
	Provisions []Provision `json:"provisions,omitempty" yaml:"provisions,omitempty"`
}

// SSH holds the provider's SSH connection settings.
type SSH struct {
	Username       string `json:"username,omitempty" yaml:"username,omitempty"`
	Password       string `json:"password,omitempty" yaml:"password,omitempty"`
	Shell          string `json:"shell,omitempty" yaml:"shell,omitempty"`
	PrivateKeyPath string `json:"private_key_path,omitempty" yaml:"private_key_path,omitempty"`
	InsertKey      *bool  `json:"insert_key,omitempty" yaml:"insert_key,omitempty"`
}

// Network is one network attachment. Settings other than kind and ip are
// passed to the provider untouched.
type Network struct {
	Kind    NetworkKind    `json:"kind" yaml:"kind"`
	IP      string         `json:"ip,omitempty" yaml:"ip,omitempty"`
	Options map[string]any `json:"options,omitempty" yaml:",inline"`
}

// SyncedFolder shares a host directory with the machine. Only Host and Guest
// are used locally; the rest are mount options for the provider.
type SyncedFolder struct {
	Host         string   `json:"host" yaml:"host"`
	Guest        string   `json:"guest" yaml:"guest"`
	Create       *bool    `json:"create,omitempty" yaml:"create,omitempty"`
	Group        string   `json:"group,omitempty" yaml:"group,omitempty"`
	Owner        string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	MountOptions []string `json:"mount_options,omitempty" yaml:"mount_options,omitempty"`
}

// Provision is one provisioning step. Which fields apply depends on Kind.
type Provision struct {
	Kind ProvisionKind `json:"kind" yaml:"kind"`

	// Name labels the step in output.
	// +optional
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Run is once, always or never. Defaults to once.
	// +optional
	Run RunPolicy `json:"run,omitempty" yaml:"run,omitempty"`

	// File provisioner fields. Target is a directory; when Destination is
	// empty it becomes Target/<basename of Source>.
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Target      string `json:"target,omitempty" yaml:"target,omitempty"`

	// Shell provisioner fields. Exactly one of Inline and Path is set; an
	// empty inline script is still set.
	Inline     *string           `json:"inline,omitempty" yaml:"inline,omitempty"`
	Path       string            `json:"path,omitempty" yaml:"path,omitempty"`
	Args       Args              `json:"args,omitempty" yaml:"args,omitempty"`
	Env        map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Privileged *bool             `json:"privileged,omitempty" yaml:"privileged,omitempty"`
	UploadPath string            `json:"upload_path,omitempty" yaml:"upload_path,omitempty"`
	Binary     *bool             `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// RunPolicy controls when a provision step runs.
type RunPolicy string

const (
	RunOnce   RunPolicy = "once"
	RunAlways RunPolicy = "always"
	RunNever  RunPolicy = "never"
)

// InlineScript returns an inline script body for Provision.Inline.
func InlineScript(body string) *string {
	return &body
}

// Args are shell script arguments: either one raw string, used verbatim, or
// a list whose items are quoted individually.
type Args struct {
	Raw  string
	List []string

	isList bool
}

// RawArgs returns Args holding a raw argument string.
func RawArgs(s string) Args {
	return Args{Raw: s}
}

// ListArgs returns Args holding separate arguments.
func ListArgs(items ...string) Args {
	return Args{List: items, isList: true}
}

// IsList reports whether the arguments were given as a list.
func (a Args) IsList() bool {
	return a.isList
}

// IsZero reports whether no arguments were given.
func (a Args) IsZero() bool {
	return a.Raw == "" && len(a.List) == 0
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (a *Args) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*a = Args{}
			return nil
		}
		*a = RawArgs(n.Value)
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: args list items must be scalars", item.Line)
			}
			items = append(items, item.Value)
		}
		*a = ListArgs(items...)
		return nil
	default:
		return fmt.Errorf("line %d: args must be a string or a list of strings", n.Line)
	}
}

// MarshalYAML writes the arguments in the shape they were given.
func (a Args) MarshalYAML() (interface{}, error) {
	if a.isList {
		return a.List, nil
	}
	return a.Raw, nil
}

// MarshalJSON writes the arguments in the shape they were given.
func (a Args) MarshalJSON() ([]byte, error) {
	if a.isList {
		return json.Marshal(a.List)
	}
	return json.Marshal(a.Raw)
}

// DeepCopy creates a deep copy of Machine. Providers is shared, since
// document trees are never modified.
func (in *Machine) DeepCopy() *Machine {
	if in == nil {
		return nil
	}
	out := new(Machine)
	*out = *in
	if in.Autostart != nil {
		autostart := *in.Autostart
		out.Autostart = &autostart
	}
	if in.SSH != nil {
		ssh := *in.SSH
		if in.SSH.InsertKey != nil {
			insert := *in.SSH.InsertKey
			ssh.InsertKey = &insert
		}
		out.SSH = &ssh
	}
	if in.Networks != nil {
		out.Networks = make([]Network, len(in.Networks))
		for i := range in.Networks {
			out.Networks[i] = *in.Networks[i].DeepCopy()
		}
	}
	if in.SyncedFolders != nil {
		out.SyncedFolders = make([]SyncedFolder, len(in.SyncedFolders))
		for i := range in.SyncedFolders {
			out.SyncedFolders[i] = *in.SyncedFolders[i].DeepCopy()
		}
	}
	if in.Provisions != nil {
		out.Provisions = make([]Provision, len(in.Provisions))
		for i := range in.Provisions {
			out.Provisions[i] = *in.Provisions[i].DeepCopy()
		}
	}
	return out
}

// DeepCopy creates a deep copy of Network.
func (in *Network) DeepCopy() *Network {
	if in == nil {
		return nil
	}
	out := new(Network)
	*out = *in
	if in.Options != nil {
		out.Options = make(map[string]any, len(in.Options))
		for k, v := range in.Options {
			out.Options[k] = v
		}
	}
	return out
}

// DeepCopy creates a deep copy of SyncedFolder.
func (in *SyncedFolder) DeepCopy() *SyncedFolder {
	if in == nil {
		return nil
	}
	out := new(SyncedFolder)
	*out = *in
	if in.Create != nil {
		create := *in.Create
		out.Create = &create
	}
	if in.MountOptions != nil {
		out.MountOptions = make([]string, len(in.MountOptions))
		copy(out.MountOptions, in.MountOptions)
	}
	return out
}

// DeepCopy creates a deep copy of Provision.
func (in *Provision) DeepCopy() *Provision {
	if in == nil {
		return nil
	}
	out := new(Provision)
	*out = *in
	if in.Args.List != nil {
		out.Args.List = make([]string, len(in.Args.List))
		copy(out.Args.List, in.Args.List)
	}
	if in.Env != nil {
		out.Env = make(map[string]string, len(in.Env))
		for k, v := range in.Env {
			out.Env[k] = v
		}
	}
	if in.Inline != nil {
		inline := *in.Inline
		out.Inline = &inline
	}
	if in.Privileged != nil {
		privileged := *in.Privileged
		out.Privileged = &privileged
	}
	if in.Binary != nil {
		binary := *in.Binary
		out.Binary = &binary
	}
	return out
}
