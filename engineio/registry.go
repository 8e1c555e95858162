package engineio

import "sync"

// Registry maps session ids to Sockets. It is not a process singleton: the
// core creates one explicitly and hands it to a Dispatcher, so tests (and
// hosts running more than one Engine.IO endpoint) can keep independent
// instances.
//
// Lookup and insert are linearizable with respect to each other: a
// successful Load never observes a Socket that a serialized-earlier Delete
// already removed, because both go through the same RWMutex.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Socket
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Socket)}
}

// Store publishes a Socket under its own id. Dispatcher calls this before
// writing any HTTP response for the session, per the core's creation order.
func (r *Registry) Store(s *Socket) {
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
}

// Load looks up a Socket by id.
func (r *Registry) Load(id string) (*Socket, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	return s, ok
}

// Delete removes a session. It is idempotent: deleting an id twice, or one
// never stored, is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// All enumerates every currently open session, per the core's public
// session API. The returned slice is a snapshot; sessions may close
// immediately after it is taken.
func (r *Registry) All() []*Socket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Socket, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of currently open sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
