package core

import "sync"

// Registry is the set of live presence records, keyed by connection id. All
// methods are safe for concurrent use. The critical sections are pure map
// work; channel sends and any other I/O happen outside the lock.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Presence
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Presence),
	}
}

// Add inserts a presence record. It returns ErrDuplicateConnection if a record
// with the same connection id is already live.
func (r *Registry) Add(p *Presence) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[p.ConnID]; exists {
		return ErrDuplicateConnection
	}
	r.conns[p.ConnID] = p
	return nil
}

// Remove deletes the record for connID and returns it. The second return is
// false if the connection was already removed; transport layers can signal
// close more than once, so removal is idempotent.
func (r *Registry) Remove(connID string) (Presence, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.conns[connID]
	if !ok {
		return Presence{}, false
	}
	delete(r.conns, connID)
	return *p, true
}

// SetTyping updates the typing flag for connID. A typing event racing a
// disconnect finds no record and is silently dropped.
func (r *Registry) SetTyping(connID string, typing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.conns[connID]; ok {
		p.Typing = typing
	}
}

// Snapshot returns a point-in-time copy of all live records. Callers iterate
// the copy, so concurrent add/remove/SetTyping cannot produce partial or
// duplicate delivery within one broadcast.
func (r *Registry) Snapshot() []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Presence, 0, len(r.conns))
	for _, p := range r.conns {
		out = append(out, *p)
	}
	return out
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
