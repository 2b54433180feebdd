package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoCredentials is returned when no configured api root covers a url.
var ErrNoCredentials = errors.New("no credentials configured for url")

// LookupError reports that no client could be resolved for URL.
type LookupError struct {
	URL string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("could not resolve a client for %s: %v", e.URL, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// OperationError reports a failed call to a remote API. StatusCode is zero when
// no response was received.
type OperationError struct {
	Operation  string
	Resource   string
	URL        string
	StatusCode int
	Payload    json.RawMessage
	Err        error
}

func (e *OperationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s at %s failed with status %d: %s", e.Operation, e.Resource, e.URL, e.StatusCode, e.Detail())
	}
	return fmt.Sprintf("%s %s at %s failed: %v", e.Operation, e.Resource, e.URL, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Detail extracts the human readable message of the remote error body.
func (e *OperationError) Detail() string {
	if len(e.Payload) > 0 {
		var body struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		}
		if err := json.Unmarshal(e.Payload, &body); err == nil {
			if body.Detail != "" {
				return body.Detail
			}
			if body.Title != "" {
				return body.Title
			}
		}
		return string(e.Payload)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// AsOperationError unwraps err into an OperationError.
func AsOperationError(err error) (*OperationError, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr, true
	}
	return nil, false
}
