// Package registry tracks the classification of every tag identifier seen in a session.
package registry

import (
	"slices"
	"sync"
)

// Classification is the trust level of an identifier.
type Classification int

const (
	// Unseen identifiers are not in the registry.
	Unseen Classification = iota
	// Provisional identifiers were scanned but not yet authorized by an operator.
	Provisional
	// Authorized identifiers are in the trusted set.
	Authorized
)

func (c Classification) String() string {
	switch c {
	case Unseen:
		return "unseen"
	case Provisional:
		return "provisional"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Registry maps identifiers to their classification. All operations are total
// and safe for concurrent use.
type Registry struct {
	entries map[string]Classification
	mu      sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]Classification),
	}
}

// Classify returns the classification of id, Unseen if absent.
func (r *Registry) Classify(id string) Classification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

// Observe records id as Provisional if it is Unseen. Known identifiers keep
// their classification. It reports whether id was newly inserted.
func (r *Registry) Observe(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = Provisional
	return true
}

// Authorize inserts or promotes id to Authorized.
func (r *Registry) Authorize(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = Authorized
}

// Forget removes id, returning it to Unseen.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// List returns the identifiers with classification c in sorted order.
func (r *Registry) List(c Classification) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id, cls := range r.entries {
		if cls == c {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of known identifiers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes every identifier.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
}
