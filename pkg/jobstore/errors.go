package jobstore

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the job store, message included
// verbatim so the user sees what the store said.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("job store http %d: %s", e.StatusCode, e.Message)
}

func newAPIError(resp *http.Response) *APIError {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
