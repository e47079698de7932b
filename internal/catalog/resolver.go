package catalog

import "github.com/deepthink-labs/deepthink-engine/internal/models"

// Resolver looks up scenarios across the built-in catalog and user-authored
// scenarios, catalog first.
type Resolver struct {
	loader *Loader
	store  *Store
}

// NewResolver creates a combined scenario resolver
func NewResolver(loader *Loader, store *Store) *Resolver {
	return &Resolver{loader: loader, store: store}
}

// Resolve returns the scenario for an ID from either source. The result is
// always a detached copy, so a long-lived session never shares state with
// the catalog or the store.
func (r *Resolver) Resolve(id string) (*models.ScenarioTemplate, bool) {
	if s := r.loader.Get(id); s != nil {
		copied := *s
		return &copied, true
	}
	if s, err := r.store.Get(id); err == nil {
		return s, true
	}
	return nil, false
}
