package manager

import (
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	errs "github.com/mcgeq/mcg/pkg/errors"
)

// Factory builds a fresh adapter instance.
type Factory func() Manager

// Registry maps manager kinds to adapter factories.
type Registry struct {
	factories map[Kind]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]Factory),
	}
}

// Register installs or replaces the factory for kind.
func (r *Registry) Register(kind Kind, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// IsRegistered reports whether kind has a factory.
func (r *Registry) IsRegistered(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Create builds a new adapter for kind.
func (r *Registry) Create(kind Kind) (Manager, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, errs.UnsupportedManager(string(kind))
	}
	return factory(), nil
}

// Lookup resolves a user-supplied name to a registered kind, ignoring case
// and surrounding whitespace.
func (r *Registry) Lookup(name string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if k == "" {
		return "", false
	}
	return k, r.IsRegistered(k)
}

// CreateByName combines Lookup and Create.
func (r *Registry) CreateByName(name string) (Manager, error) {
	k, ok := r.Lookup(name)
	if !ok {
		return nil, errs.UnsupportedManager(name)
	}
	return r.Create(k)
}

// Kinds returns every registered kind in alphabetical order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// All builds one adapter per registered kind.
func (r *Registry) All() []Manager {
	kinds := r.Kinds()
	managers := make([]Manager, 0, len(kinds))
	for _, k := range kinds {
		if mgr, err := r.Create(k); err == nil {
			managers = append(managers, mgr)
		}
	}
	return managers
}

// Available builds adapters for the registered kinds whose binary is on PATH.
func (r *Registry) Available() []Manager {
	var available []Manager
	for _, mgr := range r.All() {
		if mgr.IsAvailable() {
			available = append(available, mgr)
		}
	}
	return available
}

// Suggest returns registered kinds that fuzzily match name, best first.
func (r *Registry) Suggest(name string) []Kind {
	kinds := r.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	matches := fuzzy.Find(strings.ToLower(name), names)
	suggestions := make([]Kind, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, kinds[m.Index])
	}
	return suggestions
}
