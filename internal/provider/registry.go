// internal/provider/registry.go
package provider

import "sync"

type key struct {
	companyID int
	family    string
}

// Registry resolves the active adapter for a (company, family) pair.
// Safe for concurrent use; the channel-management side registers and
// removes adapters as sessions connect and drop.
type Registry struct {
	mu       sync.RWMutex
	adapters map[key]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[key]Adapter)}
}

func (r *Registry) Register(companyID int, a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[key{companyID, a.Family()}] = a
}

func (r *Registry) Remove(companyID int, family string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adapters, key{companyID, family})
}

// Resolve returns the registered adapter, or nil when the tenant has no
// active adapter for that family.
func (r *Registry) Resolve(companyID int, family string) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[key{companyID, family}]
}
