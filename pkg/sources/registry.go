package sources

import (
	"fmt"
	"sort"
)

// Registry maps source names to adapters. It is built by explicit Register
// calls during startup and is read-only afterwards; lookups are never
// concurrent with registration.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Registering the same name twice is a wiring
// mistake and returns an error.
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("source %s already registered", name)
	}
	r.adapters[name] = a
	return nil
}

// Get returns the adapter for a source name. An unknown name is a
// configuration error at the call boundary.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	return a, nil
}

// Names returns the registered source names, sorted for deterministic
// dispatch order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.adapters)
}
