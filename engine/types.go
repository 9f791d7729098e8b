/*
Package engine provides the offline-first cache and synchronization core.

PURPOSE:
  This package contains the pieces that keep a habit tracker fully usable
  with no network connectivity: a TTL-aware cache over a durable key/value
  store, a persistent queue of pending remote mutations, a network monitor
  that detects reconnects, and a sync coordinator that drains the queue
  when connectivity returns.

KEY CONCEPTS IN THIS FILE (types.go):
  - CacheEntry: JSON envelope wrapping any cached value with timestamps
  - OfflineAction: A remote mutation captured while offline
  - NetworkStatus: Current connectivity snapshot (derived, never persisted)
  - SyncStats/SyncResult: Observable state of the drain machinery

DESIGN PRINCIPLES:
  1. Never lose a user action: queue writes persist before returning
  2. Degrade, don't crash: storage/decode failures become cache misses
  3. Explicit dependencies: everything is constructed with injected
     collaborators (store, connectivity provider, action processor)
  4. Last-write-wins: single active writer per account, no merge logic

KEY LAYOUT:
  All components share one durable store namespace. Every key carries a
  component-specific prefix so the namespaces stay disjoint:
    cache:<domain>        TTL cache envelopes
    cache:offline-queue   JSON array of OfflineAction
    cache:last-sync       {"timestamp": ...}
    ledger:activity       JSON array of daily activity records
    ledger:fasting-days   JSON array of ISO dates (legacy mirror)

SEE ALSO:
  - cache.go: TTL cache semantics
  - queue.go: Durable mutation queue
  - sync.go:  Queue drain coordination
*/
package engine

import (
	"context"
	"encoding/json"
	"time"
)

// =============================================================================
// DURABLE STORE KEYS - Disjoint prefixes per component
// =============================================================================

const (
	KeyPrayerTimes    = "cache:prayer-times-by-date"
	KeyQuranProgress  = "cache:quran-progress"
	KeyUserProfile    = "cache:user-profile"
	KeyContentLibrary = "cache:content-library"
	KeyOfflineQueue   = "cache:offline-queue"
	KeyLastSync       = "cache:last-sync"
)

// CacheDomains lists the cache keys owned by the TTL cache. Used by
// ClearAll and by the HTTP layer to validate domain parameters.
var CacheDomains = []string{
	KeyPrayerTimes,
	KeyQuranProgress,
	KeyUserProfile,
	KeyContentLibrary,
}

// =============================================================================
// CACHE ENTRY - Envelope wrapping every cached value
// =============================================================================

// CacheEntry wraps an arbitrary JSON value with write and expiry timestamps.
// Invariant: ExpiresAt >= WrittenAt. Expiry is evaluated lazily on read;
// an entry may physically persist past ExpiresAt until the next Get or an
// explicit clear.
type CacheEntry struct {
	Data      json.RawMessage `json:"data"`
	WrittenAt time.Time       `json:"written_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at the given instant.
func (e CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Age returns how long ago the entry was written.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.WrittenAt)
}

// =============================================================================
// OFFLINE ACTION - A remote mutation not yet confirmed done
// =============================================================================

type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// OfflineAction is a queued remote mutation. Created on any mutating user
// action taken while offline (or speculatively); removed only after the
// remote processor confirms success.
type OfflineAction struct {
	ID       string          `json:"id"`
	Kind     ActionKind      `json:"kind"`
	Resource string          `json:"resource"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	QueuedAt time.Time       `json:"queued_at"`
}

// ActionDraft is an OfflineAction before the queue assigns its identity.
type ActionDraft struct {
	Kind     ActionKind      `json:"kind"`
	Resource string          `json:"resource"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ActionProcessor applies one queued action remotely. Supplied by the
// transport layer; the engine does not know how mutations are performed.
// A nil error confirms the action and removes it from the queue.
type ActionProcessor func(ctx context.Context, action OfflineAction) error

// =============================================================================
// NETWORK STATUS - Derived connectivity snapshot
// =============================================================================

// NetworkStatus is the monitor's view of connectivity. Never persisted.
// InternetReachable is nil when reachability has not been determined yet;
// unknown reachability does NOT count as offline.
type NetworkStatus struct {
	Connected         bool   `json:"connected"`
	InternetReachable *bool  `json:"internet_reachable"`
	Transport         string `json:"transport,omitempty"`
	Offline           bool   `json:"offline"`
}

// ConnectivitySample is one observation from the platform connectivity
// provider. The monitor derives Offline from it.
type ConnectivitySample struct {
	Connected         bool
	InternetReachable *bool
	Transport         string
}

// ConnectivityProvider is the platform-facing collaborator the monitor
// consumes: a stream of samples plus a one-shot fetch for manual refresh.
type ConnectivityProvider interface {
	// Fetch performs an on-demand connectivity check.
	Fetch(ctx context.Context) (ConnectivitySample, error)

	// Subscribe registers fn for every connectivity change. The returned
	// function cancels the subscription.
	Subscribe(fn func(ConnectivitySample)) (cancel func())
}

func statusFromSample(s ConnectivitySample) NetworkStatus {
	st := NetworkStatus{
		Connected:         s.Connected,
		InternetReachable: s.InternetReachable,
		Transport:         s.Transport,
	}
	st.Offline = !st.Connected || (st.InternetReachable != nil && !*st.InternetReachable)
	return st
}

// =============================================================================
// SYNC STATE - Observable drain machinery
// =============================================================================

// SyncResult counts the outcome of one queue drain.
type SyncResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SyncStats is a snapshot of the sync subsystem for UI display.
type SyncStats struct {
	QueueSize      int        `json:"queue_size"`
	LastSyncAt     *time.Time `json:"last_sync_at"`
	SyncInProgress bool       `json:"sync_in_progress"`
}

// lastSyncMarker is the JSON shape persisted under cache:last-sync.
type lastSyncMarker struct {
	Timestamp time.Time `json:"timestamp"`
}
