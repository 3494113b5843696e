package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/n0madic/go-chorus/internal/codec"
)

var (
	ErrNoFiles     = errors.New("no files to upload")
	ErrInvalidID   = errors.New("resource id must be positive")
	ErrEmptyResult = errors.New("upload finished without a result payload")
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func newAPIError(req *http.Request, resp *http.Response, body []byte) *APIError {
	return &APIError{
		Method:     req.Method,
		Path:       req.URL.Path,
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, codec.FormatAPIErrorWithHeaders(e.StatusCode, e.Body, e.Headers))
}

// Message returns the backend's error text, or "" if the body carried none.
func (e *APIError) Message() string {
	return codec.ExtractErrorMessage(e.Body)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is a 409 from the backend (name taken).
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func checkID(kind string, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s id %d", ErrInvalidID, kind, id)
	}
	return nil
}
