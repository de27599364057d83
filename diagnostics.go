package anvil

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ServiceInfo describes one registered descriptor for operational tooling.
type ServiceInfo struct {
	Service        string `json:"service"`
	Implementation string `json:"implementation"`
	Lifetime       string `json:"lifetime"`
	Constructors   int    `json:"constructors"`
	Pinned         bool   `json:"pinned,omitempty"`
	Prebuilt       bool   `json:"prebuilt,omitempty"`
}

// Descriptors enumerates every registered descriptor in registration order,
// including non-primary entries for identities registered more than once.
func (p *Provider) Descriptors() []ServiceInfo {
	descriptors := p.registry.all()
	infos := make([]ServiceInfo, len(descriptors))
	for i, d := range descriptors {
		infos[i] = ServiceInfo{
			Service:        typeName(d.service),
			Implementation: typeName(d.impl),
			Lifetime:       d.lifetime.String(),
			Constructors:   len(d.constructors),
			Pinned:         d.pinned,
			Prebuilt:       d.hasInstance,
		}
	}
	return infos
}

// Stats summarizes the provider's current state.
type Stats struct {
	ServicesRegistered int    `json:"services_registered"`
	SingletonsCached   int    `json:"singletons_cached"`
	RootScopeID        string `json:"root_scope_id"`
	Closed             bool   `json:"closed"`
}

// GetStats returns statistics about the provider.
func (p *Provider) GetStats() Stats {
	return Stats{
		ServicesRegistered: len(p.registry.order),
		SingletonsCached:   p.singletons.len(),
		RootScopeID:        p.root.id,
		Closed:             p.root.isEnded(),
	}
}

// Report renders the descriptor enumeration and stats as JSON.
func (p *Provider) Report() ([]byte, error) {
	return json.Marshal(struct {
		Stats       Stats         `json:"stats"`
		Descriptors []ServiceInfo `json:"descriptors"`
	}{
		Stats:       p.GetStats(),
		Descriptors: p.Descriptors(),
	})
}
