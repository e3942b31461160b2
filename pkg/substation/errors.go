package substation

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates the response didn't complete before the deadline.
	ErrTimeout = errors.New("response timeout")
	// ErrMalformed indicates a complete response that can't be applied.
	ErrMalformed = errors.New("malformed response")
	// ErrTruncated indicates the stream ended in the middle of a response.
	ErrTruncated = fmt.Errorf("%w: truncated", ErrMalformed)
	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("transport closed")
)

// TransportError wraps a failure of the underlying link.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("substation %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// SizeError reports a record of wrong size.
type SizeError struct {
	Record   string
	Expected int
	Actual   int
}

// Error implements error.
func (e *SizeError) Error() string {
	return fmt.Sprintf("%s size %d, expect %d", e.Record, e.Actual, e.Expected)
}
