/*
cache.go - TTL-aware cache over the durable store

PURPOSE:
  Wraps arbitrary values in timestamped envelopes so the UI can render
  prayer times, Quran progress, and profile data with no connectivity.
  Expiration is lazy: an expired entry is deleted on the read that
  discovers it, never by a background sweeper.

CRITICAL SEMANTICS:
  1. Set always overwrites; there is no merge.
  2. Get on an expired entry deletes it as a side effect and misses.
  3. GetIgnoringExpiry never deletes; it exists for offline fallback
     rendering (show stale data rather than nothing) and reports age.
  4. The cache never raises to its caller. Storage and decode failures
     are logged and become misses; writes degrade to silent no-ops.

WHY LAZY EVICTION?
  - No scheduler dependency, no background goroutine to manage
  - Reads already touch the store; eviction rides along for free
  - An entry lingering past expiry is harmless: it can only be seen
    through GetIgnoringExpiry, which labels it expired

SEE ALSO:
  - types.go: CacheEntry envelope
  - habits/ledger.go: Ledger persistence built on the same store
*/
package engine

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Cache is a TTL-aware view over the durable store. Values are wrapped in
// CacheEntry envelopes and evaluated for expiry on every read.
type Cache struct {
	store  KVStore
	logger *log.Logger
	now    func() time.Time
}

// NewCache creates a cache over the given store.
func NewCache(store KVStore, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{store: store, logger: logger, now: time.Now}
}

// StaleRead is the result of a forced read that ignores expiry.
type StaleRead struct {
	Found   bool          `json:"found"`
	Expired bool          `json:"expired"`
	Age     time.Duration `json:"age"`
}

// Set writes value under key with the given time-to-live. Always
// overwrites. A storage failure is logged and swallowed; a marshal failure
// of the caller's own value is the one programming error worth logging
// loudly, but it too never propagates.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Printf("[Cache] set %q: marshal failed: %v", key, err)
		return
	}

	now := c.now()
	entry := CacheEntry{
		Data:      data,
		WrittenAt: now,
		ExpiresAt: now.Add(ttl),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Printf("[Cache] set %q: marshal envelope failed: %v", key, err)
		return
	}

	if err := c.store.Set(ctx, key, string(raw)); err != nil {
		c.logger.Printf("[Cache] %v", &StorageError{Op: "set", Key: key, Cause: err})
	}
}

// Get loads key into dest and reports whether a live value was found.
// An expired entry is deleted as a side effect and reported as a miss.
// Storage and decode failures are logged and reported as misses.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	entry, ok := c.load(ctx, key)
	if !ok {
		return false
	}

	if entry.Expired(c.now()) {
		// Lazy eviction. A failed delete just means the next read
		// evicts again; still a miss either way.
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Printf("[Cache] %v", &StorageError{Op: "delete", Key: key, Cause: err})
		}
		return false
	}

	return c.decodeInto(key, entry.Data, dest)
}

// GetIgnoringExpiry loads key into dest regardless of expiry and never
// deletes. It reports whether a value was found, whether it is past its
// TTL, and how stale it is, so callers can render "last updated 3h ago".
func (c *Cache) GetIgnoringExpiry(ctx context.Context, key string, dest any) StaleRead {
	entry, ok := c.load(ctx, key)
	if !ok {
		return StaleRead{}
	}
	if !c.decodeInto(key, entry.Data, dest) {
		return StaleRead{}
	}
	now := c.now()
	return StaleRead{
		Found:   true,
		Expired: entry.Expired(now),
		Age:     entry.Age(now),
	}
}

// Remove deletes key. Failures are logged and swallowed.
func (c *Cache) Remove(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Printf("[Cache] %v", &StorageError{Op: "delete", Key: key, Cause: err})
	}
}

// ClearAll removes every listed key. Used on sign-out and full refresh.
func (c *Cache) ClearAll(ctx context.Context, knownKeys []string) {
	for _, key := range knownKeys {
		c.Remove(ctx, key)
	}
}

// Peek returns the raw envelope without expiry side effects, for callers
// that want the timestamps alongside the undecoded payload.
func (c *Cache) Peek(ctx context.Context, key string) (CacheEntry, bool) {
	return c.load(ctx, key)
}

func (c *Cache) load(ctx context.Context, key string) (CacheEntry, bool) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Printf("[Cache] %v", &StorageError{Op: "get", Key: key, Cause: err})
		return CacheEntry{}, false
	}
	if !found {
		return CacheEntry{}, false
	}

	var entry CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// Corrupt envelope is indistinguishable from absence.
		c.logger.Printf("[Cache] %v", &DecodeError{Key: key, Cause: err})
		return CacheEntry{}, false
	}
	if entry.Data == nil || entry.WrittenAt.IsZero() {
		c.logger.Printf("[Cache] %v", &DecodeError{Key: key, Cause: ErrDecodeFailure})
		return CacheEntry{}, false
	}
	return entry, true
}

func (c *Cache) decodeInto(key string, data json.RawMessage, dest any) bool {
	if dest == nil {
		return true
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Printf("[Cache] %v", &DecodeError{Key: key, Cause: err})
		return false
	}
	return true
}
