package catalog

import (
	"context"
	"time"

	"github.com/jobassist/backend/pkg/status"
)

// Highlight is the coarse match-score tier used for visual scanning.
type Highlight string

const (
	HighlightRed    Highlight = "red"
	HighlightYellow Highlight = "yellow"
	HighlightWhite  Highlight = "white"
	HighlightGreen  Highlight = "green"
)

// Score thresholds for tier derivation; scores are 0-100.
const (
	thresholdRed    = 40
	thresholdYellow = 70
)

// HighlightForScore derives a tier when the store sends none.
func HighlightForScore(score float64) Highlight {
	switch {
	case score < thresholdRed:
		return HighlightRed
	case score < thresholdYellow:
		return HighlightYellow
	default:
		return HighlightWhite
	}
}

// JobPosting is a scraped and scored posting as the store reports it.
// Only the status field is mutated by this service, and only through the
// transition engine.
type JobPosting struct {
	ID          string        `json:"job_id"`
	Title       string        `json:"title"`
	Company     string        `json:"company"`
	Location    string        `json:"location,omitempty"`
	Salary      string        `json:"salary,omitempty"`
	JobType     string        `json:"job_type,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
	Score       float64       `json:"score"`
	Highlight   Highlight     `json:"highlight,omitempty"`
	Status      status.Status `json:"status,omitempty"`
	ScrapedAt   time.Time     `json:"scraped_at"`
}

// EffectiveStatus falls back to pending when the store sent nothing.
func (j JobPosting) EffectiveStatus() status.Status {
	if j.Status.Valid() {
		return j.Status
	}
	return status.StatusPending
}

// EffectiveHighlight prefers the stored tier, deriving from the score
// otherwise.
func (j JobPosting) EffectiveHighlight() Highlight {
	switch j.Highlight {
	case HighlightRed, HighlightYellow, HighlightWhite, HighlightGreen:
		return j.Highlight
	}
	return HighlightForScore(j.Score)
}

// Repository is the port to the external job store's catalog read.
type Repository interface {
	List(ctx context.Context, scope string) ([]JobPosting, error)
}
