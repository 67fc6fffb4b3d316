package dispatch

import "sync"

// Registry is a concurrent name->handle map for one capability. Reads are
// the hot path; writes (load/unload) are rare, so a RWMutex guards a plain
// Go map — the same shape the teacher uses for its provider registry
// (providers/registry.go), generalized here with generics so the four
// capability registries (llm, multimodal, embedding, image) share one
// implementation instead of four hand-duplicated maps.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

// NewRegistry constructs an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]T)}
}

// Lookup returns a point-in-time snapshot read: either the handle
// installed under name, or ok=false if no such entry exists. A concurrent
// unload never produces a partially-read handle — the map read happens
// entirely under the read lock.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// Insert installs handle under name, overwriting and releasing any prior
// entry of the same name (the prior Go value is simply dropped; callers
// holding a reference obtained before the overwrite keep using it, since
// Go values/interfaces are not mutated in place).
func (r *Registry[T]) Insert(name string, handle T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = handle
}

// Remove deletes name from the registry. Idempotent: removing an absent
// name is a no-op.
func (r *Registry[T]) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Names returns a point-in-time snapshot of every installed name. The
// order is unspecified.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
