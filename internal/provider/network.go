package provider

import (
	"fmt"

	"github.com/jbweber/kiln/api/v1alpha1"
)

// DynamicIP asks the provider to pick an address.
const DynamicIP = "dynamic"

// NormalizeNetwork returns the network as the backend expects it. A private
// network with a dynamic ip becomes a dhcp network; a public network with a
// dynamic ip drops the ip. The input is not modified.
func NormalizeNetwork(n v1alpha1.Network) (v1alpha1.Network, error) {
	if err := n.Kind.Validate(); err != nil {
		return v1alpha1.Network{}, err
	}

	out := *n.DeepCopy()
	switch n.Kind {
	case v1alpha1.NetworkPrivateNetwork:
		if out.IP == DynamicIP {
			out.IP = ""
			if out.Options == nil {
				out.Options = make(map[string]any, 1)
			}
			out.Options["type"] = "dhcp"
		}
	case v1alpha1.NetworkPublicNetwork:
		if out.IP == DynamicIP {
			out.IP = ""
		}
	}
	return out, nil
}

// NormalizeNetworks normalizes every network in order.
func NormalizeNetworks(nets []v1alpha1.Network) ([]v1alpha1.Network, error) {
	if len(nets) == 0 {
		return nil, nil
	}
	out := make([]v1alpha1.Network, len(nets))
	for i := range nets {
		n, err := NormalizeNetwork(nets[i])
		if err != nil {
			return nil, fmt.Errorf("networks[%d]: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}
