package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobassist/backend/pkg/status"
)

type fakeUploader struct {
	validateCalls int
	parseCalls    int
	applyCalls    int

	blocked chan struct{} // when set, ValidateUpload waits until closed
	entered chan struct{} // signals ValidateUpload was reached

	report    ValidationReport
	parse     ParseResult
	outcome   ApplyOutcome
	validErr  error
	parseErr  error
	applyErr  error
	lastRows  []Row
	lastName  string
	lastScope string
}

func (f *fakeUploader) ValidateUpload(ctx context.Context, scope, filename string, contents []byte) (ValidationReport, error) {
	f.validateCalls++
	f.lastScope, f.lastName = scope, filename
	if f.entered != nil {
		close(f.entered)
	}
	if f.blocked != nil {
		<-f.blocked
	}
	if f.validErr != nil {
		return ValidationReport{}, f.validErr
	}
	return f.report, nil
}

func (f *fakeUploader) ParseUpload(ctx context.Context, scope, filename string, contents []byte) (ParseResult, error) {
	f.parseCalls++
	f.lastScope, f.lastName = scope, filename
	if f.parseErr != nil {
		return ParseResult{}, f.parseErr
	}
	return f.parse, nil
}

func (f *fakeUploader) ApplyUpdates(ctx context.Context, scope string, rows []Row) (ApplyOutcome, error) {
	f.applyCalls++
	f.lastScope, f.lastRows = scope, rows
	if f.applyErr != nil {
		return ApplyOutcome{}, f.applyErr
	}
	if f.outcome.AppliedCount == 0 && f.outcome.Failures == nil {
		return ApplyOutcome{AppliedCount: len(rows)}, nil
	}
	return f.outcome, nil
}

type fakeResolver struct {
	known map[string]bool
	all   bool
	guard *status.Guard
}

func (r *fakeResolver) HasJob(id string) bool {
	if r.all {
		return true
	}
	return r.known[id]
}

func (r *fakeResolver) Guard() *status.Guard { return r.guard }

func allowAll() *fakeResolver {
	return &fakeResolver{all: true, guard: status.NewGuard()}
}

func xlsx(n int) []byte { return bytes.Repeat([]byte{0x42}, n) }

func TestSelectFileRejectsLocally(t *testing.T) {
	store := &fakeUploader{}
	p := NewPipeline(store, "scope-1")

	require.ErrorIs(t, p.SelectFile("", xlsx(10)), ErrNoFile)
	require.ErrorIs(t, p.SelectFile("updates.csv", xlsx(10)), ErrBadExtension)
	require.ErrorIs(t, p.SelectFile("updates.xlsx", nil), ErrEmptyFile)
	require.ErrorIs(t, p.SelectFile("updates.xlsx", xlsx(MaxFileSize+1)), ErrFileTooLarge)

	require.Zero(t, store.validateCalls, "local rejections must not reach the store")
	require.Equal(t, StateIdle, p.Snapshot().State)
}

func TestSelectFileAcceptsBothExtensions(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, "scope-1")
	require.NoError(t, p.SelectFile("a.xlsx", xlsx(10)))
	require.NoError(t, p.SelectFile("b.XLS", xlsx(10)))
	require.Equal(t, StateFileSelected, p.Snapshot().State)
	require.Equal(t, "b.XLS", p.Snapshot().FileName)
}

func TestValidatePhase(t *testing.T) {
	store := &fakeUploader{report: ValidationReport{Valid: true, RowsFound: 5}}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))

	report, err := p.Validate(context.Background())
	require.NoError(t, err)
	require.True(t, report.Valid)
	require.Equal(t, 5, report.RowsFound)
	require.Equal(t, "updates.xlsx", store.lastName)
	require.Equal(t, "scope-1", store.lastScope)
	require.Equal(t, StateValidated, p.Snapshot().State)
}

func TestValidateWithoutFile(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, "scope-1")
	_, err := p.Validate(context.Background())
	require.ErrorIs(t, err, ErrNoFile)
}

func TestValidateFailureKeepsFile(t *testing.T) {
	store := &fakeUploader{validErr: errors.New("store down")}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))

	_, err := p.Validate(context.Background())
	require.Error(t, err)

	snap := p.Snapshot()
	require.Equal(t, StateValidationFailed, snap.State)
	require.Equal(t, "updates.xlsx", snap.FileName, "failure must retain the file for retry")

	// Retry succeeds without reselecting.
	store.validErr = nil
	_, err = p.Validate(context.Background())
	require.NoError(t, err)
}

func TestParseRetainsRowsWithoutApplying(t *testing.T) {
	store := &fakeUploader{parse: ParseResult{
		TotalRows: 2, ValidRows: 2,
		Rows: []Row{
			{RowNumber: 2, JobID: "job-1", Status: "applied"},
			{RowNumber: 3, JobID: "job-2", Status: "offer"},
		},
	}}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))

	result, err := p.Parse(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	require.Zero(t, store.applyCalls, "parsing must not apply anything")
	require.Equal(t, StateUploaded, p.Snapshot().State)
	require.Equal(t, 2, p.Snapshot().RowsHeld)
}

func TestApplyHappyPath(t *testing.T) {
	rows := make([]Row, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, Row{RowNumber: i + 2, JobID: fmt.Sprintf("job-%d", i), Status: "applied"})
	}
	store := &fakeUploader{parse: ParseResult{TotalRows: 5, ValidRows: 5, Rows: rows}}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))
	_, err := p.Parse(context.Background())
	require.NoError(t, err)

	res, err := p.Apply(context.Background(), allowAll())
	require.NoError(t, err)
	require.Equal(t, 5, res.TotalRows)
	require.Equal(t, 5, res.ValidRows)
	require.Equal(t, 5, res.AppliedCount)
	require.Empty(t, res.Errors)
	require.Equal(t, 1, store.applyCalls, "valid rows go to the store in one bulk call")

	// Completion clears file and rows and lands in Applied.
	snap := p.Snapshot()
	require.Equal(t, StateApplied, snap.State)
	require.Empty(t, snap.FileName)
	require.Zero(t, snap.RowsHeld)
}

func TestApplySkipsUnknownJobs(t *testing.T) {
	rows := make([]Row, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, Row{RowNumber: i + 2, JobID: fmt.Sprintf("job-%d", i), Status: "interview"})
	}
	known := &fakeResolver{known: make(map[string]bool), guard: status.NewGuard()}
	for i := 0; i < 10; i++ {
		known.known[fmt.Sprintf("job-%d", i)] = i%3 != 0 // job-0, job-3, job-6, job-9 unknown
	}
	store := &fakeUploader{parse: ParseResult{TotalRows: 10, ValidRows: 10, Rows: rows}}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))
	_, err := p.Parse(context.Background())
	require.NoError(t, err)

	res, err := p.Apply(context.Background(), known)
	require.NoError(t, err, "row-level failures must not fail the batch")
	require.Equal(t, 10, res.TotalRows)
	require.Equal(t, 6, res.ValidRows)
	require.Equal(t, 4, res.InvalidRows)
	require.Equal(t, 6, res.AppliedCount)
	require.Len(t, res.Errors, 4)
	for _, rowErr := range res.Errors {
		require.Equal(t, "unknown job id", rowErr.Message)
	}
	require.Len(t, store.lastRows, 6)
}

func TestApplyRejectsBadRowsLocally(t *testing.T) {
	store := &fakeUploader{parse: ParseResult{TotalRows: 3, ValidRows: 3, Rows: []Row{
		{RowNumber: 2, JobID: "", Status: "applied"},
		{RowNumber: 3, JobID: "job-1", Status: "ghosted"},
		{RowNumber: 4, JobID: "job-1", Status: "Offer"},
	}}}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))
	_, err := p.Parse(context.Background())
	require.NoError(t, err)

	res, err := p.Apply(context.Background(), allowAll())
	require.NoError(t, err)
	require.Equal(t, 1, res.ValidRows)
	require.Equal(t, 2, res.InvalidRows)
	require.Len(t, store.lastRows, 1)
	require.Equal(t, "offer", store.lastRows[0].Status, "statuses are normalized before the bulk call")
}

func TestSinglePhaseInFlight(t *testing.T) {
	store := &fakeUploader{
		blocked: make(chan struct{}),
		entered: make(chan struct{}),
	}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))

	done := make(chan error, 1)
	go func() {
		_, err := p.Validate(context.Background())
		done <- err
	}()
	<-store.entered

	_, err := p.Parse(context.Background())
	require.ErrorIs(t, err, ErrPhaseInFlight)
	require.ErrorIs(t, p.SelectFile("other.xlsx", xlsx(128)), ErrPhaseInFlight)

	close(store.blocked)
	require.NoError(t, <-done)
}

func TestApplyBeforeParse(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))

	_, err := p.Apply(context.Background(), allowAll())
	require.ErrorIs(t, err, ErrNothingParsed)
}

func TestApplyRejectsGuardedJobs(t *testing.T) {
	store := &fakeUploader{parse: ParseResult{TotalRows: 2, ValidRows: 2, Rows: []Row{
		{RowNumber: 2, JobID: "job-1", Status: "applied"},
		{RowNumber: 3, JobID: "job-2", Status: "offer"},
	}}}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))
	_, err := p.Parse(context.Background())
	require.NoError(t, err)

	// A single transition for job-2 is in flight on the same session.
	resolver := allowAll()
	require.True(t, resolver.guard.TryAcquire("job-2"))

	_, err = p.Apply(context.Background(), resolver)
	require.ErrorIs(t, err, status.ErrTransitionInFlight)
	require.Zero(t, store.applyCalls, "an overlapping batch must not reach the store")
	require.Equal(t, StateUploaded, p.Snapshot().State)
	require.Equal(t, 2, p.Snapshot().RowsHeld, "the rejected batch stays pending")

	resolver.guard.Release("job-2")
	res, err := p.Apply(context.Background(), resolver)
	require.NoError(t, err)
	require.Equal(t, 2, res.AppliedCount)

	// The guard is released once the bulk call finishes.
	require.True(t, resolver.guard.TryAcquire("job-1"))
}

func TestApplyFailureRetainsParsedRows(t *testing.T) {
	store := &fakeUploader{
		parse:    ParseResult{TotalRows: 1, ValidRows: 1, Rows: []Row{{RowNumber: 2, JobID: "job-1", Status: "applied"}}},
		applyErr: errors.New("store down"),
	}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))
	_, err := p.Parse(context.Background())
	require.NoError(t, err)

	_, err = p.Apply(context.Background(), allowAll())
	require.Error(t, err)
	require.Equal(t, StateApplyFailed, p.Snapshot().State)
	require.Equal(t, 1, p.Snapshot().RowsHeld, "failed apply must keep the rows for retry")

	store.applyErr = nil
	res, err := p.Apply(context.Background(), allowAll())
	require.NoError(t, err)
	require.Equal(t, 1, res.AppliedCount)
}

func TestApplyMergesStoreFailures(t *testing.T) {
	store := &fakeUploader{
		parse: ParseResult{TotalRows: 2, ValidRows: 2, Rows: []Row{
			{RowNumber: 2, JobID: "job-1", Status: "applied"},
			{RowNumber: 3, JobID: "job-2", Status: "offer"},
		}},
		outcome: ApplyOutcome{AppliedCount: 1, Failures: []RowError{{Row: 3, JobID: "job-2", Message: "stale row"}}},
	}
	p := NewPipeline(store, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))
	_, err := p.Parse(context.Background())
	require.NoError(t, err)

	res, err := p.Apply(context.Background(), allowAll())
	require.NoError(t, err)
	require.Equal(t, 1, res.AppliedCount)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "stale row", res.Errors[0].Message)
}

func TestRemoveFileResets(t *testing.T) {
	p := NewPipeline(&fakeUploader{parse: ParseResult{Rows: []Row{{JobID: "job-1", Status: "applied"}}}}, "scope-1")
	require.NoError(t, p.SelectFile("updates.xlsx", xlsx(128)))
	_, err := p.Parse(context.Background())
	require.NoError(t, err)

	p.RemoveFile()
	snap := p.Snapshot()
	require.Equal(t, StateIdle, snap.State)
	require.Empty(t, snap.FileName)
	require.Zero(t, snap.RowsHeld)
}
