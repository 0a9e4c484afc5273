package reconcile

import (
	"context"
	"errors"
)

// Row is one parsed spreadsheet line as the store's parser returns it.
// Rows exist only within a pipeline run; they are never persisted here.
type Row struct {
	RowNumber int    `json:"row_number,omitempty"`
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
}

// RowError reports a problem with a single row without failing the run.
type RowError struct {
	Row     int    `json:"row,omitempty"`
	JobID   string `json:"job_id,omitempty"`
	Message string `json:"message"`
}

// ValidationReport is the phase-1 result. Row-level problems live in
// Warnings/Errors inside a successful response; only a structurally
// unreadable file fails the call itself.
type ValidationReport struct {
	Valid     bool     `json:"valid"`
	RowsFound int      `json:"rows_found"`
	Warnings  []string `json:"warnings,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ParseResult is the phase-2 result. Rows are held pending explicit
// confirmation; parsing applies nothing.
type ParseResult struct {
	TotalRows   int        `json:"total_rows"`
	ValidRows   int        `json:"valid_rows"`
	InvalidRows int        `json:"invalid_rows"`
	Rows        []Row      `json:"parsed_data"`
	Errors      []RowError `json:"errors,omitempty"`
}

// Result is the phase-3 report. AppliedCount counts accepted attempts,
// not net changes; applied <= valid <= total always holds.
type Result struct {
	TotalRows    int        `json:"total_rows"`
	ValidRows    int        `json:"valid_rows"`
	InvalidRows  int        `json:"invalid_rows"`
	AppliedCount int        `json:"applied_count"`
	Errors       []RowError `json:"errors,omitempty"`
}

// ApplyOutcome is what the store's bulk endpoint reports back.
type ApplyOutcome struct {
	AppliedCount int        `json:"applied_count"`
	Failures     []RowError `json:"failures,omitempty"`
}

// Uploader is the port to the job store's upload endpoints.
type Uploader interface {
	ValidateUpload(ctx context.Context, scope, filename string, contents []byte) (ValidationReport, error)
	ParseUpload(ctx context.Context, scope, filename string, contents []byte) (ParseResult, error)
	ApplyUpdates(ctx context.Context, scope string, rows []Row) (ApplyOutcome, error)
}

// State is the pipeline's explicit state machine position. Failure states
// retain the selected file for retry; a completed apply lands in Applied
// with the file and rows cleared; Idle is entered only by explicit
// removal.
type State string

const (
	StateIdle             State = "idle"
	StateFileSelected     State = "file_selected"
	StateValidating       State = "validating"
	StateValidated        State = "validated"
	StateValidationFailed State = "validation_failed"
	StateUploading        State = "uploading"
	StateUploaded         State = "uploaded"
	StateUploadFailed     State = "upload_failed"
	StateApplying         State = "applying"
	StateApplied          State = "applied"
	StateApplyFailed      State = "apply_failed"
)

// Errors rejected locally, before any request reaches the store, plus
// pipeline sequencing errors.
var (
	ErrNoFile         = errors.New("no file selected")
	ErrEmptyFile      = errors.New("file is empty")
	ErrFileTooLarge   = errors.New("file size exceeds the upload limit")
	ErrBadExtension   = errors.New("only .xlsx and .xls files are accepted")
	ErrUnreadableFile = errors.New("file could not be parsed")
	ErrPhaseInFlight  = errors.New("another pipeline phase is in flight")
	ErrNothingParsed  = errors.New("no parsed rows pending apply")
)
