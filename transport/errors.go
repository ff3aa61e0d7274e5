package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for the transport package.
//
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnsupportedTransport is returned for an unknown transport name or Kind.
	ErrUnsupportedTransport = errors.New("transport: unsupported transport")

	// ErrUnsupportedCompression is returned for an unknown UDP compression name.
	ErrUnsupportedCompression = errors.New("transport: unsupported compression")

	// ErrTransport is the parent of every delivery failure.
	ErrTransport = errors.New("transport: delivery failed")

	// ErrServerReported is returned when a 2xx HTTP response body carries an
	// "error_class" key.
	ErrServerReported = fmt.Errorf("%w: server reported an error", ErrTransport)
)

// StatusError is returned by the HTTP client for a non-2xx response.
// It wraps ErrTransport.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: HTTP %d %s", ErrTransport, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}
