package agent

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds the profiles of every agent in the process so that an
// agent seated at several tables shares one profile.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// Register adds p. Registering an ID twice is an error.
func (r *Registry) Register(p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID()]; exists {
		return fmt.Errorf("agent %s already registered", p.ID())
	}
	r.profiles[p.ID()] = p
	return nil
}

// Get returns the profile for id.
func (r *Registry) Get(id string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	return p, ok
}

// Remove drops id from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, id)
}

// All returns every profile ordered by ID.
func (r *Registry) All() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Profile) int { return strings.Compare(a.ID(), b.ID()) })
	return out
}
