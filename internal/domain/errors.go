package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult marks a month for which the source returned no records.
	// It is not a failure; it only suppresses output for that month.
	ErrEmptyResult = errors.New("empty result")

	// ErrNoData is returned by the cleaner when no input file could be read.
	ErrNoData = errors.New("no data found")
)

// TransportError wraps a network-level failure: connection refused, DNS,
// timeout, or a body that could not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// DecodeError reports a response body that does not have the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseError reports an input file that could not be read as a table.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Path, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ErrorKind maps an error to a stable label for logs and metrics.
func ErrorKind(err error) string {
	var (
		transportErr *TransportError
		httpErr      *HTTPError
		decodeErr    *DecodeError
		parseErr     *ParseError
	)
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrEmptyResult):
		return "empty"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "other"
	}
}
