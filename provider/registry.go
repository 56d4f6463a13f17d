package provider

import (
	"fmt"
	"sync"
)

// Registry manages payment provider factories.
type Registry struct {
	factories map[ProviderName]ProviderFactory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[ProviderName]ProviderFactory),
	}
}

// Register adds a provider factory to the registry.
func (r *Registry) Register(name ProviderName, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create builds a new instance of the named provider.
func (r *Registry) Create(name ProviderName) (PaymentProvider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("provider %q is not registered: %w", name, ErrUnsupportedProvider)
	}
	return factory(), nil
}

// Names returns the registered provider names.
func (r *Registry) Names() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]ProviderName, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry is the global registry adapter packages register into from
// their init functions.
var DefaultRegistry = NewRegistry()

// Register registers a provider with the default registry.
func Register(name ProviderName, factory ProviderFactory) {
	DefaultRegistry.Register(name, factory)
}
