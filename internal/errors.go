package internal

import (
	"errors"
	"fmt"
)

// SessionNotFoundError is returned when a session id does not resolve to an
// active session in the registry.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// IsSessionNotFound reports whether err (or any error it wraps) is a
// SessionNotFoundError.
func IsSessionNotFound(err error) bool {
	var e *SessionNotFoundError
	return errors.As(err, &e)
}

// StorageInitError represents a failure to provision backing storage
// (registry database or a per-session store file).
type StorageInitError struct {
	Path string
	Err  error
}

func (e *StorageInitError) Error() string {
	return fmt.Sprintf("storage init failed: %s: %v", e.Path, e.Err)
}

func (e *StorageInitError) Unwrap() error {
	return e.Err
}

// SerializationError represents a payload that cannot be represented in the
// canonical JSON encoding used for hashing and storage.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("payload not serializable: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// QueryError represents a failure executing validated SQL against a session
// store.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// RejectedError is returned by the SQL gate when a statement is not
// permitted. Reason is surfaced to the caller verbatim.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("sql rejected: %s", e.Reason)
}

// IsRejected reports whether err is a gate rejection.
func IsRejected(err error) bool {
	var e *RejectedError
	return errors.As(err, &e)
}

// RowLimitError indicates a result set exceeded the declared row limit after
// execution.
type RowLimitError struct {
	Limit int
}

func (e *RowLimitError) Error() string {
	return fmt.Sprintf("result exceeds row limit of %d", e.Limit)
}

// FormatError represents an unsupported export format.
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Format)
}

// WriteError represents a failure writing an export file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed: %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
