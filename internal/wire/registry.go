package wire

import "sync"

// Registry is an allow-list of envelope types accepted at the dispatch
// boundary. Envelope payloads are opaque to the client, so validation is
// limited to the type tag: unknown types are dropped before reaching
// subscribers.
//
// A nil *Registry accepts every type.
type Registry struct {
	mu    sync.RWMutex
	known map[string]struct{}
}

// NewRegistry creates a registry pre-populated with the given types. The
// heartbeat type is always known.
func NewRegistry(types ...string) *Registry {
	r := &Registry{known: make(map[string]struct{}, len(types)+1)}
	r.known[TypeHeartbeat] = struct{}{}
	for _, t := range types {
		r.known[t] = struct{}{}
	}
	return r
}

// Register adds a type to the allow-list.
func (r *Registry) Register(typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[typ] = struct{}{}
}

// Known reports whether the type is accepted. Nil registries accept all.
func (r *Registry) Known(typ string) bool {
	if r == nil {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.known[typ]
	return ok
}
