/*
sync.go - Sync coordinator: drains the offline queue

PURPOSE:
  Replays queued actions against the injected remote processor when the
  device is online. Triggered automatically by the network monitor on
  reconnect, or explicitly by a caller (manual retry button).

CRITICAL SEMANTICS:
  1. No-op {0,0} immediately when the current status is offline.
  2. Single flight: a call arriving while a drain is running returns
     {0,0}. The guard is an explicit flag under a mutex, not an implicit
     reliance on scheduling, because goroutines run in parallel.
  3. Strict order: the queue snapshot is processed front to back.
  4. Per-action isolation: one failure does not abort the batch. The
     failed action stays in the queue, in its original position, and is
     retried on the next run. There is no backoff and no poison-action
     eviction; callers wanting a retry cap must impose it externally.
  5. lastSyncAt is recorded only when at least one action succeeded.
*/
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"
)

// Coordinator drains the offline queue through the remote processor.
type Coordinator struct {
	queue   *Queue
	monitor *Monitor
	process ActionProcessor
	store   KVStore
	logger  *log.Logger

	mu       sync.Mutex
	inFlight bool
	now      func() time.Time
}

// NewCoordinator wires the coordinator to its collaborators. The
// processor is supplied by the transport layer.
func NewCoordinator(queue *Queue, monitor *Monitor, store KVStore, process ActionProcessor, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		queue:   queue,
		monitor: monitor,
		process: process,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// SyncOfflineActions drains the current queue snapshot. See the file
// header for the exact semantics.
func (c *Coordinator) SyncOfflineActions(ctx context.Context) SyncResult {
	if c.monitor.Status().Offline {
		return SyncResult{}
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return SyncResult{}
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	snapshot := c.queue.List(ctx)
	if len(snapshot) == 0 {
		return SyncResult{}
	}

	var result SyncResult
	for _, action := range snapshot {
		if err := c.process(ctx, action); err != nil {
			// Retained in place; retried on the next run.
			c.logger.Printf("[Sync] action %s (%s %s) failed: %v",
				action.ID, action.Kind, action.Resource, err)
			result.Failed++
			continue
		}

		if err := c.queue.RemoveByID(ctx, action.ID); err != nil && !errors.Is(err, ErrActionNotFound) {
			// Confirmed remotely but still queued locally: the action
			// will be replayed. Acceptable, since the remote side is the
			// single writer's own account and replays are last-write-wins.
			c.logger.Printf("[Sync] confirmed %s but remove failed: %v", action.ID, err)
		}
		result.Success++
	}

	if result.Success > 0 {
		c.recordLastSync(ctx)
	}

	c.logger.Printf("[Sync] drained: %d succeeded, %d failed, %d remaining",
		result.Success, result.Failed, c.queue.Size(ctx))
	return result
}

// InProgress reports whether a drain is currently running.
func (c *Coordinator) InProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastSyncAt returns the timestamp of the last drain that confirmed at
// least one action, or nil if none has.
func (c *Coordinator) LastSyncAt(ctx context.Context) *time.Time {
	raw, found, err := c.store.Get(ctx, KeyLastSync)
	if err != nil {
		c.logger.Printf("[Sync] %v", &StorageError{Op: "get", Key: KeyLastSync, Cause: err})
		return nil
	}
	if !found {
		return nil
	}
	var marker lastSyncMarker
	if err := json.Unmarshal([]byte(raw), &marker); err != nil || marker.Timestamp.IsZero() {
		c.logger.Printf("[Sync] %v", &DecodeError{Key: KeyLastSync, Cause: err})
		return nil
	}
	return &marker.Timestamp
}

// Stats returns a snapshot for UI display.
func (c *Coordinator) Stats(ctx context.Context) SyncStats {
	return SyncStats{
		QueueSize:      c.queue.Size(ctx),
		LastSyncAt:     c.LastSyncAt(ctx),
		SyncInProgress: c.InProgress(),
	}
}

func (c *Coordinator) recordLastSync(ctx context.Context) {
	raw, err := json.Marshal(lastSyncMarker{Timestamp: c.now()})
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, KeyLastSync, string(raw)); err != nil {
		// Stale "last synced" indicator only; nothing to recover.
		c.logger.Printf("[Sync] %v", &StorageError{Op: "set", Key: KeyLastSync, Cause: err})
	}
}
