package v1alpha1

import "fmt"

// UnsupportedKindError reports a kind tag outside its closed set.
type UnsupportedKindError struct {
	// Category is what the tag classifies: provision, provider or network.
	Category string
	Kind     string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unrecognized %s %q", e.Category, e.Kind)
}

// ProvisionKind selects a provisioner.
type ProvisionKind string

const (
	ProvisionFile  ProvisionKind = "file"
	ProvisionShell ProvisionKind = "shell"
)

// Validate returns an UnsupportedKindError for unknown provisioners.
func (k ProvisionKind) Validate() error {
	switch k {
	case ProvisionFile, ProvisionShell:
		return nil
	default:
		return &UnsupportedKindError{Category: "provision", Kind: string(k)}
	}
}

// ProviderKind selects a hypervisor backend.
type ProviderKind string

const (
	ProviderVirtualBox        ProviderKind = "virtualbox"
	ProviderVMwareFusion      ProviderKind = "vmware_fusion"
	ProviderVMwareWorkstation ProviderKind = "vmware_workstation"
	ProviderParallels         ProviderKind = "parallels"
	ProviderLibvirt           ProviderKind = "libvirt"
)

// ProviderKinds lists every supported provider.
var ProviderKinds = []ProviderKind{
	ProviderVirtualBox,
	ProviderVMwareFusion,
	ProviderVMwareWorkstation,
	ProviderParallels,
	ProviderLibvirt,
}

// Validate returns an UnsupportedKindError for unknown providers.
func (k ProviderKind) Validate() error {
	for _, known := range ProviderKinds {
		if k == known {
			return nil
		}
	}
	return &UnsupportedKindError{Category: "provider", Kind: string(k)}
}

// NetworkKind selects a network attachment type.
type NetworkKind string

const (
	NetworkForwardedPort  NetworkKind = "forwarded_port"
	NetworkPrivateNetwork NetworkKind = "private_network"
	NetworkPublicNetwork  NetworkKind = "public_network"
)

// Validate returns an UnsupportedKindError for unknown network kinds.
func (k NetworkKind) Validate() error {
	switch k {
	case NetworkForwardedPort, NetworkPrivateNetwork, NetworkPublicNetwork:
		return nil
	default:
		return &UnsupportedKindError{Category: "network", Kind: string(k)}
	}
}
