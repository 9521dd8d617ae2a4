package provider

import (
	"fmt"

	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/kiln/api/v1alpha1"
	"github.com/jbweber/kiln/internal/document"
)

const (
	// DefaultLibvirtMemoryMiB is used when the libvirt section sets no memory.
	DefaultLibvirtMemoryMiB = 512

	// DefaultLibvirtCPUs is used when the libvirt section sets no cpus.
	DefaultLibvirtCPUs = 1

	// DefaultLibvirtNetwork backs private networks without a network option.
	DefaultLibvirtNetwork = "default"
)

func libvirt(name string, cfg *document.Map, networks []v1alpha1.Network) (*Plan, error) {
	settings := document.NewMap()
	settings.Set("name", document.Scalar{V: name})

	for _, key := range cfg.Keys() {
		switch key {
		case "name":
		case "memory", "cpus", "cpu_mode", "disk":
			v, _ := cfg.Get(key)
			settings.Set(key, v)
		default:
			return nil, fmt.Errorf("bad libvirt '%s' configuration", key)
		}
	}

	memory, err := intSetting(cfg, "memory", DefaultLibvirtMemoryMiB)
	if err != nil {
		return nil, fmt.Errorf("libvirt %w", err)
	}
	cpus, err := intSetting(cfg, "cpus", DefaultLibvirtCPUs)
	if err != nil {
		return nil, fmt.Errorf("libvirt %w", err)
	}
	if memory <= 0 || cpus <= 0 {
		return nil, fmt.Errorf("libvirt memory and cpus must be positive")
	}
	cpuMode, _ := cfg.String("cpu_mode")
	disk, _ := cfg.String("disk")

	metadata, err := newDomainMetadata(name, settings)
	if err != nil {
		return nil, err
	}

	xml, err := domainXML(domainSpec{
		Name:      name,
		Metadata:  metadata,
		MemoryMiB: memory,
		CPUs:      cpus,
		CPUMode:   cpuMode,
		Disk:      disk,
		Networks:  networks,
	})
	if err != nil {
		return nil, err
	}
	return &Plan{Kind: v1alpha1.ProviderLibvirt, Name: name, Settings: settings, DomainXML: xml}, nil
}

type domainSpec struct {
	Name      string
	MemoryMiB int
	CPUs      int
	CPUMode   string
	Disk      string
	Networks  []v1alpha1.Network
	Metadata  *libvirtxml.DomainMetadata
}

// domainXML renders a KVM domain for spec.
func domainXML(spec domainSpec) (string, error) {
	cpuMode := spec.CPUMode
	if cpuMode == "" {
		cpuMode = "host-model"
	}

	domain := &libvirtxml.Domain{
		Type:     "kvm",
		Name:     spec.Name,
		Metadata: spec.Metadata,
		Memory: &libvirtxml.DomainMemory{
			Value: uint(spec.MemoryMiB),
			Unit:  "MiB",
		},
		VCPU: &libvirtxml.DomainVCPU{
			Placement: "static",
			Value:     uint(spec.CPUs),
		},
		OS: &libvirtxml.DomainOS{
			Type: &libvirtxml.DomainOSType{
				Arch: "x86_64",
				Type: "hvm",
			},
		},
		Features: &libvirtxml.DomainFeatureList{
			ACPI: &libvirtxml.DomainFeature{},
			APIC: &libvirtxml.DomainFeatureAPIC{},
		},
		CPU: &libvirtxml.DomainCPU{
			Mode: cpuMode,
		},
		Clock: &libvirtxml.DomainClock{
			Offset: "utc",
		},
		OnPoweroff: "destroy",
		OnReboot:   "restart",
		OnCrash:    "restart",
		Devices:    &libvirtxml.DomainDeviceList{},
	}

	if spec.Disk != "" {
		domain.Devices.Disks = append(domain.Devices.Disks, libvirtxml.DomainDisk{
			Device: "disk",
			Driver: &libvirtxml.DomainDiskDriver{
				Name: "qemu",
				Type: "qcow2",
			},
			Source: &libvirtxml.DomainDiskSource{
				File: &libvirtxml.DomainDiskSourceFile{
					File: spec.Disk,
				},
			},
			Target: &libvirtxml.DomainDiskTarget{
				Dev: "vda",
				Bus: "virtio",
			},
			Boot: &libvirtxml.DomainDeviceBoot{
				Order: 1,
			},
		})
	}

	for _, n := range spec.Networks {
		iface, ok := domainInterface(n)
		if !ok {
			continue
		}
		domain.Devices.Interfaces = append(domain.Devices.Interfaces, iface)
	}

	// Serial console
	domain.Devices.Serials = []libvirtxml.DomainSerial{
		{
			Source: &libvirtxml.DomainChardevSource{
				Pty: &libvirtxml.DomainChardevSourcePty{},
			},
			Target: &libvirtxml.DomainSerialTarget{
				Port: func() *uint { p := uint(0); return &p }(),
			},
		},
	}

	xml, err := domain.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal domain XML: %w", err)
	}
	return xml, nil
}

// domainInterface maps a network onto a NIC. Forwarded ports have no NIC.
func domainInterface(n v1alpha1.Network) (libvirtxml.DomainInterface, bool) {
	iface := libvirtxml.DomainInterface{
		Model: &libvirtxml.DomainInterfaceModel{Type: "virtio"},
	}

	switch n.Kind {
	case v1alpha1.NetworkPrivateNetwork:
		network := DefaultLibvirtNetwork
		if s, ok := n.Options["network"].(string); ok && s != "" {
			network = s
		}
		iface.Source = &libvirtxml.DomainInterfaceSource{
			Network: &libvirtxml.DomainInterfaceSourceNetwork{Network: network},
		}
	case v1alpha1.NetworkPublicNetwork:
		bridge, _ := n.Options["bridge"].(string)
		if bridge == "" {
			return iface, false
		}
		iface.Source = &libvirtxml.DomainInterfaceSource{
			Bridge: &libvirtxml.DomainInterfaceSourceBridge{Bridge: bridge},
		}
	default:
		return iface, false
	}
	return iface, true
}
