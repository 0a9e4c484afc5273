package status

import (
	"context"
	"fmt"
	"sort"
)

// LedgerUseCase reads the audit trail of a job. Each call redoes the
// fetch; history failures never block transitions.
type LedgerUseCase interface {
	History(ctx context.Context, jobID string) ([]HistoryEntry, error)
}

type ledger struct {
	store Store
}

func NewLedger(store Store) LedgerUseCase { return &ledger{store: store} }

// History returns entries oldest first. Entries sharing a timestamp keep
// the order the store reported them in (stable sort, no re-ordering on
// ties).
func (l *ledger) History(ctx context.Context, jobID string) ([]HistoryEntry, error) {
	entries, err := l.store.History(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}
