package tracking

import (
	"sync"
	"time"
)

// Registry holds one Session per user for the server.
type Registry struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// NewRegistry returns an empty registry whose sessions use now as clock.
func NewRegistry(now func() time.Time) *Registry {
	return &Registry{
		now:      now,
		sessions: make(map[string]*entry),
	}
}

func (r *Registry) get(uid string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[uid]
	if !ok {
		e = &entry{session: NewSession(r.now)}
		r.sessions[uid] = e
	}
	return e
}

// With runs fn with exclusive access to uid's session, creating an idle
// one on first use.
func (r *Registry) With(uid string, fn func(*Session) error) error {
	e := r.get(uid)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Drop forgets uid's session.
func (r *Registry) Drop(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, uid)
}

// Len is the number of sessions held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
