package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jobassist/backend/pkg/status"
)

// MaxFileSize is the accepted spreadsheet size limit.
const MaxFileSize = 10 << 20 // 10MB

// JobResolver answers whether a job id exists in the caller's catalog
// scope and exposes the session's per-job guard. Rows referencing unknown
// jobs never reach the store, and guarded jobs are never applied while a
// single transition for them is in flight.
type JobResolver interface {
	HasJob(jobID string) bool
	Guard() *status.Guard
}

// Snapshot is a read-only view of the pipeline for UI recovery.
type Snapshot struct {
	State    State  `json:"state"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	RowsHeld int    `json:"rows_held"`
}

// Pipeline drives the three-phase reconciliation workflow for one
// session. Only one phase may be in flight at a time; a second call while
// one is pending is rejected, never interleaved.
type Pipeline struct {
	store Uploader
	scope string

	mu       sync.Mutex
	busy     bool
	state    State
	fileName string
	fileData []byte
	parsed   *ParseResult
}

func NewPipeline(store Uploader, scope string) *Pipeline {
	return &Pipeline{store: store, scope: scope, state: StateIdle}
}

// SelectFile runs the local checks (size, extension, emptiness) and
// retains the file. Rejections here are pure input validation; nothing is
// sent anywhere.
func (p *Pipeline) SelectFile(name string, contents []byte) error {
	if err := checkFile(name, contents); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return ErrPhaseInFlight
	}
	p.fileName = name
	p.fileData = contents
	p.parsed = nil
	p.state = StateFileSelected
	return nil
}

func checkFile(name string, contents []byte) error {
	if strings.TrimSpace(name) == "" {
		return ErrNoFile
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".xlsx" && ext != ".xls" {
		return fmt.Errorf("%w: got %q", ErrBadExtension, ext)
	}
	if len(contents) == 0 {
		return ErrEmptyFile
	}
	if int64(len(contents)) > MaxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(contents))
	}
	return nil
}

// RemoveFile discards the retained file and parsed rows; the pipeline
// returns to Idle.
func (p *Pipeline) RemoveFile() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Pipeline) reset() {
	p.fileName = ""
	p.fileData = nil
	p.parsed = nil
	p.state = StateIdle
}

func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Snapshot{State: p.state, FileName: p.fileName, FileSize: int64(len(p.fileData))}
	if p.parsed != nil {
		s.RowsHeld = len(p.parsed.Rows)
	}
	return s
}

// Validate is phase 1: pure inspection of the selected file by the
// store's parser. It never mutates any status.
func (p *Pipeline) Validate(ctx context.Context) (ValidationReport, error) {
	name, data, err := p.begin(StateValidating)
	if err != nil {
		return ValidationReport{}, err
	}
	report, err := p.store.ValidateUpload(ctx, p.scope, name, data)
	if err != nil {
		p.finish(StateValidationFailed)
		return ValidationReport{}, err
	}
	p.finish(StateValidated)
	return report, nil
}

// Parse is phase 2: the store parses the re-submitted file and the rows
// are retained here pending explicit confirmation. Nothing is applied.
func (p *Pipeline) Parse(ctx context.Context) (ParseResult, error) {
	name, data, err := p.begin(StateUploading)
	if err != nil {
		return ParseResult{}, err
	}
	result, err := p.store.ParseUpload(ctx, p.scope, name, data)
	if err != nil {
		p.finish(StateUploadFailed)
		return ParseResult{}, err
	}
	p.mu.Lock()
	p.parsed = &result
	p.mu.Unlock()
	p.finish(StateUploaded)
	return result, nil
}

// Apply is phase 3: every retained row is attempted, best-effort. Rows
// that fail locally (unknown job, bad status) become row errors; the rest
// go to the store's bulk endpoint in one call. Row-level failures never
// abort the batch.
func (p *Pipeline) Apply(ctx context.Context, resolver JobResolver) (Result, error) {
	rows, err := p.beginApply()
	if err != nil {
		return Result{}, err
	}

	res := Result{TotalRows: len(rows)}
	send := make([]Row, 0, len(rows))
	for _, row := range rows {
		if rowErr := resolveRow(&row, resolver); rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}
		send = append(send, row)
	}
	res.ValidRows = len(send)
	res.InvalidRows = res.TotalRows - res.ValidRows

	if len(send) > 0 {
		jobIDs := distinctJobIDs(send)
		guard := resolver.Guard()
		if !guard.TryAcquireAll(jobIDs) {
			p.finish(StateUploaded)
			return Result{}, status.ErrTransitionInFlight
		}
		defer guard.ReleaseAll(jobIDs)

		outcome, err := p.store.ApplyUpdates(ctx, p.scope, send)
		if err != nil {
			p.finish(StateApplyFailed)
			return Result{}, err
		}
		res.AppliedCount = outcome.AppliedCount
		res.Errors = append(res.Errors, outcome.Failures...)
	}

	// Completion clears the file and rows; the Applied state stays
	// visible until the next selection or explicit removal.
	p.mu.Lock()
	p.fileName = ""
	p.fileData = nil
	p.parsed = nil
	p.state = StateApplied
	p.busy = false
	p.mu.Unlock()
	return res, nil
}

func distinctJobIDs(rows []Row) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.JobID]; ok {
			continue
		}
		seen[row.JobID] = struct{}{}
		ids = append(ids, row.JobID)
	}
	return ids
}

func resolveRow(row *Row, resolver JobResolver) *RowError {
	if strings.TrimSpace(row.JobID) == "" {
		return &RowError{Row: row.RowNumber, Message: "missing job id"}
	}
	if !resolver.HasJob(row.JobID) {
		return &RowError{Row: row.RowNumber, JobID: row.JobID, Message: "unknown job id"}
	}
	st, err := status.Parse(row.Status)
	if err != nil {
		return &RowError{Row: row.RowNumber, JobID: row.JobID, Message: err.Error()}
	}
	row.Status = st.String()
	return nil
}

// begin moves the pipeline into an in-flight phase that re-reads the
// retained file. The phase lock is held until finish.
func (p *Pipeline) begin(next State) (name string, data []byte, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return "", nil, ErrPhaseInFlight
	}
	if p.fileName == "" || len(p.fileData) == 0 {
		return "", nil, ErrNoFile
	}
	p.busy = true
	p.state = next
	return p.fileName, p.fileData, nil
}

func (p *Pipeline) beginApply() ([]Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return nil, ErrPhaseInFlight
	}
	if p.parsed == nil {
		return nil, ErrNothingParsed
	}
	p.busy = true
	p.state = StateApplying
	rows := make([]Row, len(p.parsed.Rows))
	copy(rows, p.parsed.Rows)
	return rows, nil
}

// finish records the phase outcome. Failure states keep the selected file
// so the user can retry without reselecting.
func (p *Pipeline) finish(outcome State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	p.state = outcome
}
