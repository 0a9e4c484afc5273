// Package jobstore is the HTTP client for the external job-store service
// (scraping, scoring, spreadsheet parsing and persistence live there).
// This service talks to it only through the documented REST contract.
package jobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jobassist/backend/pkg/catalog"
	"github.com/jobassist/backend/pkg/reconcile"
	"github.com/jobassist/backend/pkg/status"
)

// Client implements the catalog, status and upload ports over HTTP.
type Client struct {
	BaseURL string
	httpDo  *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpDo: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type statusUpdateRequest struct {
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
	ActingUser string `json:"actingUser,omitempty"`
}

type statusUpdateResponse struct {
	Entry status.HistoryEntry `json:"entry"`
}

// UpdateStatus persists a transition and the matching ledger entry as one
// unit; the store returns the created entry.
func (c *Client) UpdateStatus(ctx context.Context, jobID string, st status.Status, notes, actingUser string) (status.HistoryEntry, error) {
	endpoint := fmt.Sprintf("%s/status/%s", c.BaseURL, url.PathEscape(jobID))
	body, err := json.Marshal(statusUpdateRequest{Status: st.String(), Notes: notes, ActingUser: actingUser})
	if err != nil {
		return status.HistoryEntry{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return status.HistoryEntry{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out statusUpdateResponse
	if err := c.do(req, &out); err != nil {
		return status.HistoryEntry{}, err
	}
	return out.Entry, nil
}

type historyResponse struct {
	History []status.HistoryEntry `json:"history"`
}

// History fetches the full audit trail of a job; each call redoes the
// fetch.
func (c *Client) History(ctx context.Context, jobID string) ([]status.HistoryEntry, error) {
	endpoint := fmt.Sprintf("%s/status-history/%s", c.BaseURL, url.PathEscape(jobID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var out historyResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

type jobsResponse struct {
	Jobs []catalog.JobPosting `json:"jobs"`
}

// List reads the catalog for one scope.
func (c *Client) List(ctx context.Context, scope string) ([]catalog.JobPosting, error) {
	endpoint := fmt.Sprintf("%s/jobs?scope=%s", c.BaseURL, url.QueryEscape(scope))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var out jobsResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

// ValidateUpload runs the store's structural inspection of a spreadsheet.
// A 4xx here means the file itself is unreadable, not a transport fault.
func (c *Client) ValidateUpload(ctx context.Context, scope, filename string, contents []byte) (reconcile.ValidationReport, error) {
	var out reconcile.ValidationReport
	if err := c.postFile(ctx, "/upload/validate", scope, filename, contents, &out); err != nil {
		return reconcile.ValidationReport{}, err
	}
	return out, nil
}

// ParseUpload asks the store to parse the spreadsheet into rows. The
// parse persists nothing; rows come back to the caller.
func (c *Client) ParseUpload(ctx context.Context, scope, filename string, contents []byte) (reconcile.ParseResult, error) {
	var out reconcile.ParseResult
	if err := c.postFile(ctx, "/upload/parse", scope, filename, contents, &out); err != nil {
		return reconcile.ParseResult{}, err
	}
	return out, nil
}

type applyRequest struct {
	Scope   string          `json:"scope"`
	Updates []reconcile.Row `json:"updates"`
}

type applyResponse struct {
	AppliedCount int `json:"applied_count"`
	Summary      struct {
		Failed []reconcile.RowError `json:"failed,omitempty"`
	} `json:"summary"`
}

// ApplyUpdates submits the confirmed rows to the bulk endpoint in one
// call; the store applies best-effort and reports per-row outcomes.
func (c *Client) ApplyUpdates(ctx context.Context, scope string, rows []reconcile.Row) (reconcile.ApplyOutcome, error) {
	body, err := json.Marshal(applyRequest{Scope: scope, Updates: rows})
	if err != nil {
		return reconcile.ApplyOutcome{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload/apply", bytes.NewReader(body))
	if err != nil {
		return reconcile.ApplyOutcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out applyResponse
	if err := c.do(req, &out); err != nil {
		return reconcile.ApplyOutcome{}, err
	}
	return reconcile.ApplyOutcome{AppliedCount: out.AppliedCount, Failures: out.Summary.Failed}, nil
}

// Ping checks store reachability for the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) postFile(ctx context.Context, path, scope, filename string, contents []byte, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := fw.Write(contents); err != nil {
		return err
	}
	if scope != "" {
		if err := mw.WriteField("scope", scope); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if err := c.do(req, out); err != nil {
		// The store answers 4xx when the file itself cannot be parsed.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return fmt.Errorf("%w: %s", reconcile.ErrUnreadableFile, apiErr.Message)
		}
		return err
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpDo.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
