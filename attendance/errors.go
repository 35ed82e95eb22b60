/*
errors.go - Centralized error types for the attendance core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Collaborator packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Storage errors - Ledger read/write failures
  2. Event errors - Malformed answer events from the transport
  3. Configuration errors - Invalid schedule/timezone/argument input

USAGE:
  if errors.Is(err, attendance.ErrStorage) {
      // abandon this cycle, do not crash
  }

SEE ALSO:
  - recorder.go: Returns MalformedEventError
  - store/sqlite: Wraps driver failures in StorageError
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStorage is returned when the ledger cannot be read or written.
	// Not retried by the core; scheduled triggers abandon their cycle.
	ErrStorage = errors.New("ledger storage failure")

	// ErrMalformedEvent is returned for an answer event with missing
	// identity or an unexpected number of chosen options. The event is
	// dropped and never touches the ledger.
	ErrMalformedEvent = errors.New("malformed answer event")

	// ErrInvalidConfig is returned for invalid schedule, timezone, or
	// credential input discovered at startup.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StorageError wraps a driver-level failure with the operation that hit it.
type StorageError struct {
	Op  string // e.g. "upsert", "query range"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorage }

// MalformedEventError describes why an answer event was rejected.
type MalformedEventError struct {
	EventID string
	Reason  string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed answer event %s: %s", e.EventID, e.Reason)
}

func (e *MalformedEventError) Unwrap() error { return ErrMalformedEvent }

// ConfigError describes an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsStorage returns true if the error is a ledger storage failure.
func IsStorage(err error) bool { return errors.Is(err, ErrStorage) }

// IsMalformedEvent returns true if the error means the event should be
// dropped without a retry.
func IsMalformedEvent(err error) bool { return errors.Is(err, ErrMalformedEvent) }
