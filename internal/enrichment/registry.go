package enrichment

// Registry holds providers in priority order. Selection walks the slice and
// picks the first available provider whose predicate matches; registration
// order is the whole priority scheme.
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry with the given priority order.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Select returns the first available provider that can handle the request.
func (r *Registry) Select(req Request) (Provider, bool) {
	for _, provider := range r.providers {
		if provider.IsAvailable() && provider.CanHandle(req) {
			return provider, true
		}
	}
	return nil, false
}

// Providers returns the registered providers in priority order.
func (r *Registry) Providers() []Provider {
	return r.providers
}
