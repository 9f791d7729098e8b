/*
engine.go - The engine instance that owns every subscription

PURPOSE:
  A single Engine value replaces the module-scoped handlers the original
  design grew organically. It is constructed with injected dependencies
  (durable store, connectivity provider, remote action processor), owns
  the cache/queue/monitor/coordinator, and is the only thing the UI layer
  talks to: snapshots out, commands in.

LIFECYCLE:
  engine := engine.New(store, provider, process, nil)
  engine.Start()      // subscribe to connectivity, auto-sync on reconnect
  defer engine.Stop()

OFFLINE BANNER:
  The UI shows a dismissible "you are offline" banner. Dismissal is
  engine state so every screen agrees; it re-arms on the next transition
  to offline.
*/
package engine

import (
	"context"
	"log"
	"sync"
)

// Engine owns the offline-first subsystem. Construct with New.
type Engine struct {
	store       KVStore
	cache       *Cache
	queue       *Queue
	monitor     *Monitor
	coordinator *Coordinator
	logger      *log.Logger

	mu              sync.Mutex
	bannerDismissed bool
}

// New constructs an engine from its injected dependencies.
func New(store KVStore, provider ConnectivityProvider, process ActionProcessor, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}

	queue := NewQueue(store, logger)
	monitor := NewMonitor(provider, logger)
	e := &Engine{
		store:       store,
		cache:       NewCache(store, logger),
		queue:       queue,
		monitor:     monitor,
		coordinator: NewCoordinator(queue, monitor, store, process, logger),
		logger:      logger,
	}

	// Reconnect drains the queue; going offline re-arms the banner.
	monitor.OnOnline(func() {
		go e.coordinator.SyncOfflineActions(context.Background())
	})
	monitor.OnOffline(func() {
		e.mu.Lock()
		e.bannerDismissed = false
		e.mu.Unlock()
	})

	return e
}

// Start begins watching connectivity.
func (e *Engine) Start() { e.monitor.Start() }

// Stop cancels the connectivity subscription.
func (e *Engine) Stop() { e.monitor.Stop() }

// Cache returns the TTL cache.
func (e *Engine) Cache() *Cache { return e.cache }

// Queue returns the offline mutation queue.
func (e *Engine) Queue() *Queue { return e.queue }

// Monitor returns the network monitor.
func (e *Engine) Monitor() *Monitor { return e.monitor }

// =============================================================================
// COMMANDS - What the UI layer may ask the engine to do
// =============================================================================

// Enqueue records a remote mutation for later replay.
func (e *Engine) Enqueue(ctx context.Context, draft ActionDraft) (string, error) {
	return e.queue.Enqueue(ctx, draft)
}

// SyncOfflineActions drains the queue now (manual retry).
func (e *Engine) SyncOfflineActions(ctx context.Context) SyncResult {
	return e.coordinator.SyncOfflineActions(ctx)
}

// RefreshNetworkStatus performs an on-demand connectivity check.
func (e *Engine) RefreshNetworkStatus(ctx context.Context) NetworkStatus {
	return e.monitor.Refresh(ctx)
}

// DismissOfflineBanner hides the offline banner until the next offline
// transition.
func (e *Engine) DismissOfflineBanner() {
	e.mu.Lock()
	e.bannerDismissed = true
	e.mu.Unlock()
}

// =============================================================================
// SNAPSHOTS - What the UI layer may read
// =============================================================================

// NetworkStatus returns the current connectivity snapshot.
func (e *Engine) NetworkStatus() NetworkStatus {
	return e.monitor.Status()
}

// SyncStats returns the current sync snapshot.
func (e *Engine) SyncStats(ctx context.Context) SyncStats {
	return e.coordinator.Stats(ctx)
}

// OfflineBannerVisible reports whether the UI should show the banner:
// currently offline and not dismissed this offline period.
func (e *Engine) OfflineBannerVisible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.monitor.Status().Offline && !e.bannerDismissed
}
