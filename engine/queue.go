/*
queue.go - Durable FIFO queue of pending remote mutations

PURPOSE:
  The queue is the durable record of "work not yet confirmed done
  remotely". Every mutating user action taken while offline is captured
  here and replayed, in enqueue order, once connectivity returns.

CRITICAL INVARIANTS:
  1. FIFO: insertion order is retry order. Never reordered.
  2. DURABLE: Enqueue and RemoveByID persist before returning, so the
     queue survives process restart.
  3. REMOVE-ON-CONFIRM: an action leaves the queue only after the remote
     processor reports success.

IDs:
  Enqueue assigns "<unix-milli>-<random suffix>", unique within the
  process lifetime and roughly sortable by enqueue time. The suffix guards
  against two enqueues landing on the same millisecond.

FAILURE SEMANTICS:
  Reads follow the cache rule (decode/storage failure == empty queue),
  but write failures are returned to the caller: silently dropping an
  enqueue would lose a user action, which is the one thing this engine
  promises never to do.
*/
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue is the persistent FIFO of offline actions, stored as a single
// JSON array under cache:offline-queue.
type Queue struct {
	store  KVStore
	logger *log.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewQueue creates a queue over the given store.
func NewQueue(store KVStore, logger *log.Logger) *Queue {
	if logger == nil {
		logger = log.Default()
	}
	return &Queue{store: store, logger: logger, now: time.Now}
}

// Enqueue assigns an id and timestamp to draft, appends it to the end of
// the queue, and persists synchronously. Returns the assigned id.
func (q *Queue) Enqueue(ctx context.Context, draft ActionDraft) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	action := OfflineAction{
		ID:       newActionID(now),
		Kind:     draft.Kind,
		Resource: draft.Resource,
		Payload:  draft.Payload,
		QueuedAt: now,
	}

	actions := q.loadLocked(ctx)
	actions = append(actions, action)
	if err := q.persistLocked(ctx, actions); err != nil {
		return "", err
	}
	return action.ID, nil
}

// List returns the queue front to back. Failures degrade to empty.
func (q *Queue) List(ctx context.Context) []OfflineAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loadLocked(ctx)
}

// Size returns the number of pending actions.
func (q *Queue) Size(ctx context.Context) int {
	return len(q.List(ctx))
}

// RemoveByID removes the action with the given id, preserving the order
// of everything else, and persists synchronously.
func (q *Queue) RemoveByID(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions := q.loadLocked(ctx)
	kept := actions[:0]
	removed := false
	for _, a := range actions {
		if a.ID == id {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return ErrActionNotFound
	}
	return q.persistLocked(ctx, kept)
}

// Clear empties the queue.
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.persistLocked(ctx, nil)
}

func (q *Queue) loadLocked(ctx context.Context) []OfflineAction {
	raw, found, err := q.store.Get(ctx, KeyOfflineQueue)
	if err != nil {
		q.logger.Printf("[Queue] %v", &StorageError{Op: "get", Key: KeyOfflineQueue, Cause: err})
		return nil
	}
	if !found {
		return nil
	}

	var actions []OfflineAction
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		// Corrupt queue decodes as empty. The alternative, failing every
		// enqueue forever, is worse than dropping unreadable state.
		q.logger.Printf("[Queue] %v", &DecodeError{Key: KeyOfflineQueue, Cause: err})
		return nil
	}
	return actions
}

func (q *Queue) persistLocked(ctx context.Context, actions []OfflineAction) error {
	if actions == nil {
		actions = []OfflineAction{}
	}
	raw, err := json.Marshal(actions)
	if err != nil {
		return &DecodeError{Key: KeyOfflineQueue, Cause: err}
	}
	if err := q.store.Set(ctx, KeyOfflineQueue, string(raw)); err != nil {
		return &StorageError{Op: "set", Key: KeyOfflineQueue, Cause: err}
	}
	return nil
}

// newActionID builds "<unix-milli>-<8 hex chars>".
func newActionID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}
