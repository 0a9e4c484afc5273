package session

import (
	"sync"

	"github.com/jobassist/backend/pkg/reconcile"
)

// Registry hands out one Session per scope, creating it on first use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	uploader reconcile.Uploader
}

func NewRegistry(uploader reconcile.Uploader) *Registry {
	return &Registry{sessions: make(map[string]*Session), uploader: uploader}
}

func (r *Registry) Get(scope string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[scope]; ok {
		return s
	}
	s := New(scope, reconcile.NewPipeline(r.uploader, scope))
	r.sessions[scope] = s
	return s
}

// Drop discards a session, abandoning any pipeline state. Requests
// already dispatched to the store are not cancelled; the next catalog
// refresh reconciles against the store's authoritative state.
func (r *Registry) Drop(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, scope)
}
