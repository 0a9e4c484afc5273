// Package session holds the explicit per-user state that the original UI
// kept in ambient component state: the catalog snapshot, the cached
// ledger tails, and the reconciliation pipeline. Every component
// operation receives this object instead of touching globals.
package session

import (
	"sync"
	"time"

	"github.com/jobassist/backend/pkg/catalog"
	"github.com/jobassist/backend/pkg/reconcile"
	"github.com/jobassist/backend/pkg/status"
)

// Session is the state of one user scope. It satisfies both
// status.SessionState and reconcile.JobResolver.
type Session struct {
	Scope    string
	Pipeline *reconcile.Pipeline

	guard *status.Guard

	mu        sync.RWMutex
	jobs      []catalog.JobPosting
	index     map[string]int
	history   map[string][]status.HistoryEntry
	loaded    bool
	fetchedAt time.Time
}

func New(scope string, pipeline *reconcile.Pipeline) *Session {
	return &Session{
		Scope:    scope,
		Pipeline: pipeline,
		guard:    status.NewGuard(),
		index:    make(map[string]int),
		history:  make(map[string][]status.HistoryEntry),
	}
}

// Guard is the per-job lock set shared by single transitions and bulk
// applies within this session.
func (s *Session) Guard() *status.Guard { return s.guard }

// SetJobs replaces the catalog snapshot with an authoritative read from
// the store. Cached optimistic state never survives a refresh.
func (s *Session) SetJobs(jobs []catalog.JobPosting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make([]catalog.JobPosting, len(jobs))
	copy(s.jobs, jobs)
	s.index = make(map[string]int, len(jobs))
	for i, j := range s.jobs {
		s.index[j.ID] = i
	}
	s.loaded = true
	s.fetchedAt = time.Now().UTC()
}

// Jobs returns a copy of the snapshot in original catalog order.
func (s *Session) Jobs() []catalog.JobPosting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.JobPosting, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Loaded reports whether a snapshot has been fetched for this scope.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Session) HasJob(jobID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[jobID]
	return ok
}

// ApplyEntry merges an accepted transition into the snapshot and extends
// the cached ledger. Called on success only: a failed write leaves the
// session exactly as before.
func (s *Session) ApplyEntry(e status.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[e.JobID]; ok {
		s.jobs[i].Status = e.NewStatus
	}
	s.history[e.JobID] = append(s.history[e.JobID], e)
}

// CachedHistory returns the entries this session has observed for a job,
// oldest first. It is a display fallback, not the authoritative ledger.
func (s *Session) CachedHistory(jobID string) []status.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[jobID]
	out := make([]status.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
