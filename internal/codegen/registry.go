package codegen

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gqlorm/gqlorm/internal/target"
)

// Registry manages available code generators
type Registry struct {
	mu         sync.RWMutex
	generators map[target.ORM]func() Generator
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[target.ORM]func() Generator),
	}
}

// Register adds a new generator factory to the registry
func (r *Registry) Register(orm target.ORM, factory func() Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[orm] = factory
}

// Get returns a fresh generator for the ORM.
func (r *Registry) Get(orm target.ORM) (Generator, error) {
	r.mu.RLock()
	factory, exists := r.generators[orm]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unsupported orm: %s", orm)
	}
	return factory(), nil
}

// ORMs returns the registered ORM targets, sorted.
func (r *Registry) ORMs() []target.ORM {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orms := make([]target.ORM, 0, len(r.generators))
	for orm := range r.generators {
		orms = append(orms, orm)
	}
	sort.Slice(orms, func(i, j int) bool { return orms[i] < orms[j] })
	return orms
}
