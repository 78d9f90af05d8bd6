package eval

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnknownEval is returned by Get for names that were never registered.
var ErrUnknownEval = errors.New("unknown eval")

// Registry is an explicit catalog of task definitions. Build one at
// startup and pass it down; there is no package-level instance.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]TaskDefinition
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]TaskDefinition)}
}

// Register adds a task definition. Re-registering a name overwrites the
// previous definition (last write wins) and logs a warning; it never
// blocks startup.
func (r *Registry) Register(def TaskDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		slog.Warn("eval already registered, overwriting", "name", def.Name)
	} else {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
}

// Get resolves a task by name.
func (r *Registry) Get(name string) (TaskDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return TaskDefinition{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownEval, name, r.namesLocked())
	}
	return def, nil
}

// List returns all definitions in registration order. The order is for
// human listing only and carries no semantics.
func (r *Registry) List() []TaskDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]TaskDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.defs[name])
	}
	return defs
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// DefaultRegistry builds a registry with every built-in evaluation.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterMath(r)
	RegisterTicTacToe(r)
	return r
}
