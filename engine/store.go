/*
store.go - Durable key/value store contract

PURPOSE:
  Defines the interface between the engine and its host-supplied
  persistence. The store is a flat string-to-string namespace shared by
  every component; values are JSON-encoded envelopes and key prefixes keep
  the components disjoint (see types.go).

IMPLEMENTATIONS:
  - store/sqlite:      Production SQLite-backed store
  - engine/store:      In-memory store for tests and development

FAILURE CONTRACT:
  Implementations return plain errors; the engine decides at each call
  site whether a failure is swallowed (cache reads) or surfaced (queue
  writes). Implementations must never panic on corrupt data.
*/
package engine

import "context"

// KVStore is the durable persistence supplied by the host platform.
// All operations are safe for concurrent use.
type KVStore interface {
	// Get returns the value for key. The second return is false when the
	// key is absent; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys with the given prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
