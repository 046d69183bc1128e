package api

import "errors"

// ErrNotFound is returned by EraStorage.GetEra when the requested era is
// unknown to storage.
var ErrNotFound = errors.New("highway: era not found")

// ErrShuttingDown is returned by EraSupervisor operations once shutdown
// has been initiated.
var ErrShuttingDown = errors.New("highway: supervisor is shutting down")

// ErrMalformed is returned when an inbound block cannot be parsed into a
// Message.
var ErrMalformed = errors.New("highway: malformed block")

// InvalidBlockError wraps a runtime validation failure.
type InvalidBlockError struct {
	Reason error
}

func (e *InvalidBlockError) Error() string {
	return "highway: invalid block: " + e.Reason.Error()
}

func (e *InvalidBlockError) Unwrap() error {
	return e.Reason
}

// NewInvalidBlockError wraps reason as an InvalidBlockError.
func NewInvalidBlockError(reason error) error {
	return &InvalidBlockError{Reason: reason}
}

// StorageFailureError wraps an underlying store error.
type StorageFailureError struct {
	Err error
}

func (e *StorageFailureError) Error() string {
	return "highway: storage failure: " + e.Err.Error()
}

func (e *StorageFailureError) Unwrap() error {
	return e.Err
}

// NewStorageFailureError wraps err as a StorageFailureError.
func NewStorageFailureError(err error) error {
	return &StorageFailureError{Err: err}
}
