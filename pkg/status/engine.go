package status

import (
	"context"
	"fmt"
)

// SessionState is the slice of caller state the engine may read and
// mutate: the catalog snapshot for existence checks, the session's
// per-job guard, and, on success only, the cached status and ledger.
type SessionState interface {
	HasJob(jobID string) bool
	Guard() *Guard
	ApplyEntry(e HistoryEntry)
}

// TransitionUseCase validates and applies a single status change.
type TransitionUseCase interface {
	Apply(ctx context.Context, sess SessionState, jobID, requested, notes, actingUser string) (HistoryEntry, error)
}

type engine struct {
	store Store
}

// NewEngine returns the default TransitionUseCase implementation.
func NewEngine(store Store) TransitionUseCase {
	return &engine{store: store}
}

// Apply checks the status domain and the catalog scope before the network
// call; on a failed write no local state changes. The session guard keeps
// at most one status-mutating operation per job in flight, whether it
// comes from here or from a bulk apply.
func (e *engine) Apply(ctx context.Context, sess SessionState, jobID, requested, notes, actingUser string) (HistoryEntry, error) {
	st, err := Parse(requested)
	if err != nil {
		return HistoryEntry{}, err
	}
	if !sess.HasJob(jobID) {
		return HistoryEntry{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	guard := sess.Guard()
	if !guard.TryAcquire(jobID) {
		return HistoryEntry{}, ErrTransitionInFlight
	}
	defer guard.Release(jobID)

	entry, err := e.store.UpdateStatus(ctx, jobID, st, notes, actingUser)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	sess.ApplyEntry(entry)
	return entry, nil
}
