package api

import (
	"errors"
	"fmt"
)

// ErrNetwork wraps transport-level failures. Callers surface it as a
// generic "network error"; the underlying cause stays available for logs.
var ErrNetwork = errors.New("network error")

// Error is a non-2xx API response. Message carries the response body's
// message field verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// IsNotFound reports whether err is a 404 API response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// IsUnauthorized reports whether err is a 401 API response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 401
}
