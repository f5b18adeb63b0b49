package syncer

import (
	"errors"
	"fmt"
)

// TimeError reports a remote value whose last-modified timestamp is
// missing or unusable. Reconciliation is driven entirely by timestamps,
// so the affected unit cannot be decided and the whole batch fails.
type TimeError struct {
	// Name identifies the affected unit.
	Name string

	// Message describes what was wrong with the timestamp.
	Message string
}

func (e *TimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// IsTimeError returns true if the error is a timestamp error.
// Uses errors.As to handle wrapped errors.
func IsTimeError(err error) bool {
	var te *TimeError
	return errors.As(err, &te)
}

// TransportError wraps a failure from a vault backend. The engine never
// retries; the wrapped error carries the backend's own detail.
type TransportError struct {
	// Op is the backend operation that failed (e.g. "get secret").
	Op string

	// Name identifies the affected unit.
	Name string

	// Err is the backend's error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError returns true if the error is a transport error.
// Uses errors.As to handle wrapped errors.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
