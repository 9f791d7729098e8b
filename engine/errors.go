/*
errors.go - Centralized error types for the offline engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Nothing in this subsystem is fatal to the process: the worst outcome is
  degraded freshness (stale cache) or a growing offline queue.

ERROR CATEGORIES:
  1. Storage failures  - The durable store read/write failed
  2. Decode failures   - Stored bytes are not the expected JSON shape
  3. Remote failures   - The injected processor rejected one action

BOUNDARY RULES:
  - Cache operations catch storage/decode failures, log them, and report a
    miss. A parse failure is indistinguishable from absence.
  - Queue reads do the same (empty queue); queue writes return the error,
    because a lost enqueue would silently drop a user action.
  - Remote failures never abort a drain batch; they are counted and the
    action stays in the queue.

SEE ALSO:
  - cache.go, queue.go: Apply the boundary rules
  - sync.go: Counts remote failures
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStorageFailure is returned when the durable store rejects a read
	// or write. Cache boundaries convert it to a miss; queue writes
	// propagate it.
	ErrStorageFailure = errors.New("durable store failure")

	// ErrDecodeFailure is returned when a stored value is not valid JSON
	// or does not match the expected envelope shape. Treated identically
	// to a cache miss / empty queue / empty ledger.
	ErrDecodeFailure = errors.New("stored value does not decode")

	// ErrActionNotFound is returned when removing a queued action whose
	// id is no longer present.
	ErrActionNotFound = errors.New("queued action not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StorageError wraps a store-level failure with the operation and key.
type StorageError struct {
	Op    string // "get", "set", "delete", "keys"
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *StorageError) Unwrap() error { return ErrStorageFailure }

// DecodeError wraps a deserialization failure with the offending key.
type DecodeError struct {
	Key   string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Key, e.Cause)
}

func (e *DecodeError) Unwrap() error { return ErrDecodeFailure }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsStorageFailure reports whether err originated in the durable store.
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// IsDecodeFailure reports whether err is a deserialization failure.
func IsDecodeFailure(err error) bool {
	return errors.Is(err, ErrDecodeFailure)
}
