package connection

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingIntegrationName is returned when New is called without an integration name.
	ErrMissingIntegrationName = errors.New("integration name is required")
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrObjectNotFound is returned for 404 responses.
	ErrObjectNotFound = errors.New("object not found")
	// ErrClient is returned for other 4xx responses.
	ErrClient = errors.New("client error")
	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("server error")
)

// APIError describes a non-success HTTP response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to its sentinel error.
// It returns nil for 1xx-3xx codes.
func classifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrObjectNotFound
	case code >= 500:
		return ErrServer
	case code >= 400:
		return ErrClient
	default:
		return nil
	}
}
