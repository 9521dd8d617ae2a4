package provider

import (
	"encoding/xml"
	"fmt"

	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/kiln/internal/document"
)

// MetadataNamespace is the XML namespace of the kiln element in a domain's
// <metadata> block.
const MetadataNamespace = "http://kiln.jbweber.dev/v1alpha1"

// DomainMetadata records which machine a libvirt domain was planned from.
// The provider settings are kept as YAML text so they stay readable when
// the domain XML is inspected directly.
type DomainMetadata struct {
	XMLName  xml.Name `xml:"machine"`
	Xmlns    string   `xml:"xmlns,attr"`
	Name     string   `xml:"name,attr"`
	Settings string   `xml:",chardata"`
}

// newDomainMetadata renders the metadata element for a planned domain.
func newDomainMetadata(name string, settings *document.Map) (*libvirtxml.DomainMetadata, error) {
	data, err := document.MarshalYAML(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}

	out, err := xml.Marshal(DomainMetadata{
		Xmlns:    MetadataNamespace,
		Name:     name,
		Settings: string(data),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to XML: %w", err)
	}
	return &libvirtxml.DomainMetadata{XML: string(out)}, nil
}

// ParseDomainMetadata extracts the kiln metadata from a rendered domain.
func ParseDomainMetadata(domainXML string) (*DomainMetadata, error) {
	var domain libvirtxml.Domain
	if err := domain.Unmarshal(domainXML); err != nil {
		return nil, fmt.Errorf("failed to unmarshal domain XML: %w", err)
	}
	if domain.Metadata == nil || domain.Metadata.XML == "" {
		return nil, fmt.Errorf("domain %s has no kiln metadata", domain.Name)
	}

	var md DomainMetadata
	if err := xml.Unmarshal([]byte(domain.Metadata.XML), &md); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata XML: %w", err)
	}
	if md.Xmlns != MetadataNamespace {
		return nil, fmt.Errorf("domain %s has metadata in namespace %q, want %q", domain.Name, md.Xmlns, MetadataNamespace)
	}
	return &md, nil
}
