package catalog

import (
	"sort"
	"strings"

	"github.com/jobassist/backend/pkg/status"
)

// SortKey selects the comparison key for catalog sorting.
type SortKey string

const (
	SortByScore   SortKey = "score"
	SortByTitle   SortKey = "title"
	SortByCompany SortKey = "company"
	SortByDate    SortKey = "date"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Filters narrows the catalog. Zero values mean "all". Search matches
// title, company and location, case-insensitive.
type Filters struct {
	Search    string
	Status    status.Status
	Highlight Highlight
}

func (f Filters) keep(j JobPosting) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(j.Title), term) &&
			!strings.Contains(strings.ToLower(j.Company), term) &&
			!strings.Contains(strings.ToLower(j.Location), term) {
			return false
		}
	}
	if f.Status != "" && j.EffectiveStatus() != f.Status {
		return false
	}
	if f.Highlight != "" && j.EffectiveHighlight() != f.Highlight {
		return false
	}
	return true
}

// FilterSort is a pure function of (catalog, filters, sort): it never
// mutates its input and returns a new slice. The sort is stable, so equal
// keys preserve original catalog order.
func FilterSort(jobs []JobPosting, f Filters, key SortKey, order SortOrder) []JobPosting {
	out := make([]JobPosting, 0, len(jobs))
	for _, j := range jobs {
		if f.keep(j) {
			out = append(out, j)
		}
	}
	less := lessFunc(key)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == OrderDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(key SortKey) func(a, b JobPosting) bool {
	switch key {
	case SortByScore:
		return func(a, b JobPosting) bool { return a.Score < b.Score }
	case SortByTitle:
		return func(a, b JobPosting) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case SortByCompany:
		return func(a, b JobPosting) bool {
			return strings.ToLower(a.Company) < strings.ToLower(b.Company)
		}
	case SortByDate:
		return func(a, b JobPosting) bool { return a.ScrapedAt.Before(b.ScrapedAt) }
	}
	return nil
}

// Stats are the dashboard counters: total plus per-highlight and
// per-status buckets.
type Stats struct {
	Total int `json:"total"`

	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	White  int `json:"white"`
	Green  int `json:"green"`

	Pending   int `json:"pending"`
	Applied   int `json:"applied"`
	Interview int `json:"interview"`
	Offer     int `json:"offer"`
	Rejected  int `json:"rejected"`
}

// CountStats recomputes the counters from scratch on every call.
func CountStats(jobs []JobPosting) Stats {
	var s Stats
	s.Total = len(jobs)
	for _, j := range jobs {
		switch j.EffectiveHighlight() {
		case HighlightRed:
			s.Red++
		case HighlightYellow:
			s.Yellow++
		case HighlightWhite:
			s.White++
		case HighlightGreen:
			s.Green++
		}
		switch j.EffectiveStatus() {
		case status.StatusPending:
			s.Pending++
		case status.StatusApplied:
			s.Applied++
		case status.StatusInterview:
			s.Interview++
		case status.StatusOffer:
			s.Offer++
		case status.StatusRejected:
			s.Rejected++
		}
	}
	return s
}
