package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jobassist/backend/pkg/status"
)

func sampleJobs() []JobPosting {
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return []JobPosting{
		{ID: "job-1", Title: "Go Developer", Company: "Acme", Location: "Berlin", Score: 85, Status: status.StatusApplied, ScrapedAt: base},
		{ID: "job-2", Title: "Backend Engineer", Company: "Globex", Location: "Remote", Score: 85, ScrapedAt: base.Add(24 * time.Hour)},
		{ID: "job-3", Title: "Platform Engineer", Company: "Initech", Location: "Munich", Score: 55, Status: status.StatusInterview, ScrapedAt: base.Add(48 * time.Hour)},
		{ID: "job-4", Title: "Site Reliability Engineer", Company: "Acme", Location: "Berlin", Score: 30, Status: status.StatusRejected, ScrapedAt: base.Add(72 * time.Hour)},
	}
}

func ids(jobs []JobPosting) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestHighlightForScore(t *testing.T) {
	require.Equal(t, HighlightRed, HighlightForScore(0))
	require.Equal(t, HighlightRed, HighlightForScore(39.9))
	require.Equal(t, HighlightYellow, HighlightForScore(40))
	require.Equal(t, HighlightYellow, HighlightForScore(69.9))
	require.Equal(t, HighlightWhite, HighlightForScore(70))
	require.Equal(t, HighlightWhite, HighlightForScore(100))
}

func TestEffectiveFallbacks(t *testing.T) {
	j := JobPosting{Score: 85}
	require.Equal(t, status.StatusPending, j.EffectiveStatus())
	require.Equal(t, HighlightWhite, j.EffectiveHighlight())

	j.Status = status.StatusOffer
	j.Highlight = HighlightGreen
	require.Equal(t, status.StatusOffer, j.EffectiveStatus())
	require.Equal(t, HighlightGreen, j.EffectiveHighlight(), "a stored tier wins over the derived one")
}

func TestFilterSortByScoreDescStableOnTies(t *testing.T) {
	got := FilterSort(sampleJobs(), Filters{}, SortByScore, OrderDesc)
	// job-1 and job-2 tie on score; catalog order breaks the tie.
	require.Equal(t, []string{"job-1", "job-2", "job-3", "job-4"}, ids(got))
}

func TestFilterSortDoesNotMutateInput(t *testing.T) {
	jobs := sampleJobs()
	_ = FilterSort(jobs, Filters{}, SortByScore, OrderAsc)
	require.Equal(t, "job-1", jobs[0].ID, "input order must be preserved")
}

func TestFilterSearchMatchesTitleCompanyLocation(t *testing.T) {
	jobs := sampleJobs()
	require.Equal(t, []string{"job-1", "job-4"}, ids(FilterSort(jobs, Filters{Search: "acme"}, SortByDate, OrderAsc)))
	require.Equal(t, []string{"job-2"}, ids(FilterSort(jobs, Filters{Search: "remote"}, SortByDate, OrderAsc)))
	require.Empty(t, FilterSort(jobs, Filters{Search: "nothing matches"}, SortByDate, OrderAsc))
}

func TestFilterByStatusAndHighlight(t *testing.T) {
	jobs := sampleJobs()
	// job-2 has no stored status and counts as pending.
	require.Equal(t, []string{"job-2"}, ids(FilterSort(jobs, Filters{Status: status.StatusPending}, SortByDate, OrderAsc)))
	require.Equal(t, []string{"job-4"}, ids(FilterSort(jobs, Filters{Highlight: HighlightRed}, SortByDate, OrderAsc)))
	require.Equal(t, []string{"job-1", "job-2"}, ids(FilterSort(jobs, Filters{Highlight: HighlightWhite}, SortByDate, OrderAsc)))
}

func TestSortKeys(t *testing.T) {
	jobs := sampleJobs()
	require.Equal(t, []string{"job-2", "job-1", "job-3", "job-4"}, ids(FilterSort(jobs, Filters{}, SortByTitle, OrderAsc)))
	require.Equal(t, []string{"job-1", "job-4", "job-2", "job-3"}, ids(FilterSort(jobs, Filters{}, SortByCompany, OrderAsc)))
	require.Equal(t, []string{"job-4", "job-3", "job-2", "job-1"}, ids(FilterSort(jobs, Filters{}, SortByDate, OrderDesc)))
}

func TestCountStats(t *testing.T) {
	s := CountStats(sampleJobs())
	require.Equal(t, 4, s.Total)
	require.Equal(t, 2, s.White)
	require.Equal(t, 1, s.Yellow)
	require.Equal(t, 1, s.Red)
	require.Zero(t, s.Green)
	require.Equal(t, 1, s.Pending)
	require.Equal(t, 1, s.Applied)
	require.Equal(t, 1, s.Interview)
	require.Equal(t, 1, s.Rejected)
	require.Zero(t, s.Offer)
}
