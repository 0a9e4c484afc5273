package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the application status of a job posting. The domain is closed:
// values outside the five constants below are rejected before any network
// call. Statuses are tags, not a progression — any value may follow any
// other, but every change is recorded in the ledger.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
)

// All returns the status domain in a stable order.
func All() []Status {
	return []Status{StatusPending, StatusApplied, StatusInterview, StatusOffer, StatusRejected}
}

// Parse normalizes a raw status string (case-insensitive, trimmed).
func Parse(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// HistoryEntry is one immutable record of the append-only audit ledger.
// PreviousStatus is nil for the first entry of a job.
type HistoryEntry struct {
	JobID          string    `json:"job_id"`
	PreviousStatus *Status   `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	Notes          string    `json:"notes,omitempty"`
	ActingUser     string    `json:"acting_user,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Store is the port to the external job store for status data. The store
// persists the new status and the ledger entry as a single logical unit
// and returns the created entry (read-after-write).
type Store interface {
	UpdateStatus(ctx context.Context, jobID string, st Status, notes, actingUser string) (HistoryEntry, error)
	History(ctx context.Context, jobID string) ([]HistoryEntry, error)
}

// Errors shared by the engine and the ledger.
var (
	ErrInvalidStatus      = errors.New("invalid status")
	ErrJobNotFound        = errors.New("job not found")
	ErrPersistence        = errors.New("status update not persisted")
	ErrTransitionInFlight = errors.New("another transition for this job is in flight")
	ErrHistoryUnavailable = errors.New("status history unavailable")
)
