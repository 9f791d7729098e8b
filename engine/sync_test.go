package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/noor/habit-engine/engine/store"
)

// recordingProcessor counts calls and fails the resources told to fail.
type recordingProcessor struct {
	mu      sync.Mutex
	calls   []string
	failing map[string]bool
	block   chan struct{} // when set, Process blocks until closed
	started chan struct{} // signals that a blocked Process has begun
}

func (p *recordingProcessor) Process(_ context.Context, action OfflineAction) error {
	p.mu.Lock()
	p.calls = append(p.calls, action.Resource)
	failing := p.failing[action.Resource]
	block := p.block
	started := p.started
	p.mu.Unlock()

	if started != nil {
		close(started)
		p.mu.Lock()
		p.started = nil
		p.mu.Unlock()
	}
	if block != nil {
		<-block
	}
	if failing {
		return errors.New("remote rejected")
	}
	return nil
}

func (p *recordingProcessor) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// newTestCoordinator wires a coordinator whose monitor is already online.
func newTestCoordinator(kv KVStore, proc *recordingProcessor) (*Coordinator, *Queue, *fakeProvider, *clock) {
	clk := newClock()
	queue, _ := newTestQueue(kv)
	provider := &fakeProvider{sample: online()}
	monitor := NewMonitor(provider, log.Default())
	monitor.Refresh(context.Background())

	c := NewCoordinator(queue, monitor, kv, proc.Process, log.Default())
	c.now = clk.Now
	return c, queue, provider, clk
}

// =============================================================================
// DRAIN SEMANTICS
// =============================================================================

func TestSync_DrainsQueueInOrder(t *testing.T) {
	// GIVEN: Three queued actions and a processor that accepts everything
	// WHEN: Draining
	// THEN: {3,0}, processed front to back, queue empty afterwards

	ctx := context.Background()
	proc := &recordingProcessor{}
	c, queue, _, _ := newTestCoordinator(store.NewMemory(), proc)

	mustEnqueue(t, queue, "a")
	mustEnqueue(t, queue, "b")
	mustEnqueue(t, queue, "c")

	result := c.SyncOfflineActions(ctx)
	if result.Success != 3 || result.Failed != 0 {
		t.Fatalf("result = %+v", result)
	}
	if got := proc.Calls(); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("processed order = %v", got)
	}
	if queue.Size(ctx) != 0 {
		t.Error("queue should be empty after a clean drain")
	}
}

func TestSync_FailedActionRetainedInPlace(t *testing.T) {
	// GIVEN: A, B, C queued; B fails remotely
	// WHEN: Draining
	// THEN: {2,1}; B is the sole survivor, still at its position; a later
	//       drain retries B

	ctx := context.Background()
	proc := &recordingProcessor{failing: map[string]bool{"b": true}}
	c, queue, _, _ := newTestCoordinator(store.NewMemory(), proc)

	mustEnqueue(t, queue, "a")
	idB := mustEnqueue(t, queue, "b")
	mustEnqueue(t, queue, "c")

	result := c.SyncOfflineActions(ctx)
	if result.Success != 2 || result.Failed != 1 {
		t.Fatalf("result = %+v", result)
	}

	remaining := queue.List(ctx)
	if len(remaining) != 1 || remaining[0].ID != idB {
		t.Fatalf("remaining = %+v", remaining)
	}

	// The remote recovers; the retry succeeds
	proc.mu.Lock()
	proc.failing = nil
	proc.mu.Unlock()

	result = c.SyncOfflineActions(ctx)
	if result.Success != 1 || result.Failed != 0 {
		t.Fatalf("retry result = %+v", result)
	}
	if queue.Size(ctx) != 0 {
		t.Error("queue should drain after the retry")
	}
}

func TestSync_OfflineIsANoOp(t *testing.T) {
	// GIVEN: A non-empty queue but offline status
	// WHEN: Draining
	// THEN: {0,0}, processor never called, queue untouched

	ctx := context.Background()
	proc := &recordingProcessor{}
	c, queue, provider, _ := newTestCoordinator(store.NewMemory(), proc)

	mustEnqueue(t, queue, "a")

	provider.mu.Lock()
	provider.sample = offline()
	provider.mu.Unlock()
	c.monitor.Refresh(ctx)

	result := c.SyncOfflineActions(ctx)
	if result.Success != 0 || result.Failed != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(proc.Calls()) != 0 {
		t.Error("processor must not run while offline")
	}
	if queue.Size(ctx) != 1 {
		t.Error("queue must be untouched while offline")
	}
}

func TestSync_EmptyQueueReturnsZero(t *testing.T) {
	proc := &recordingProcessor{}
	c, _, _, _ := newTestCoordinator(store.NewMemory(), proc)

	result := c.SyncOfflineActions(context.Background())
	if result != (SyncResult{}) {
		t.Fatalf("result = %+v", result)
	}
}

// =============================================================================
// SINGLE FLIGHT
// =============================================================================

func TestSync_SecondCallDuringDrainReturnsZero(t *testing.T) {
	// GIVEN: A drain blocked inside the processor
	// WHEN: A second drain is requested concurrently
	// THEN: It returns {0,0} immediately without touching the queue

	ctx := context.Background()
	proc := &recordingProcessor{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	c, queue, _, _ := newTestCoordinator(store.NewMemory(), proc)
	mustEnqueue(t, queue, "a")

	done := make(chan SyncResult, 1)
	go func() { done <- c.SyncOfflineActions(ctx) }()
	<-proc.started

	if !c.InProgress() {
		t.Error("InProgress should report the blocked drain")
	}
	second := c.SyncOfflineActions(ctx)
	if second != (SyncResult{}) {
		t.Fatalf("concurrent call = %+v, want {0,0}", second)
	}

	close(proc.block)
	first := <-done
	if first.Success != 1 {
		t.Fatalf("blocked drain = %+v", first)
	}
	if c.InProgress() {
		t.Error("InProgress should clear after the drain")
	}
}

// =============================================================================
// LAST SYNC MARKER
// =============================================================================

func TestSync_LastSyncRecordedOnlyOnSuccess(t *testing.T) {
	// GIVEN: A drain where every action fails
	// WHEN: Checking lastSyncAt
	// THEN: Still unset; it flips only once something succeeds

	ctx := context.Background()
	proc := &recordingProcessor{failing: map[string]bool{"a": true}}
	c, queue, _, clk := newTestCoordinator(store.NewMemory(), proc)
	mustEnqueue(t, queue, "a")

	c.SyncOfflineActions(ctx)
	if ts := c.LastSyncAt(ctx); ts != nil {
		t.Fatalf("lastSyncAt = %v after an all-failed drain", ts)
	}

	proc.mu.Lock()
	proc.failing = nil
	proc.mu.Unlock()
	clk.Advance(10 * time.Minute)

	c.SyncOfflineActions(ctx)
	ts := c.LastSyncAt(ctx)
	if ts == nil || !ts.Equal(clk.Now()) {
		t.Fatalf("lastSyncAt = %v, want %v", ts, clk.Now())
	}
}

func TestSync_StatsSnapshot(t *testing.T) {
	ctx := context.Background()
	proc := &recordingProcessor{}
	c, queue, _, _ := newTestCoordinator(store.NewMemory(), proc)
	mustEnqueue(t, queue, "a")
	mustEnqueue(t, queue, "b")

	stats := c.Stats(ctx)
	if stats.QueueSize != 2 || stats.SyncInProgress || stats.LastSyncAt != nil {
		t.Fatalf("stats = %+v", stats)
	}

	c.SyncOfflineActions(ctx)
	stats = c.Stats(ctx)
	if stats.QueueSize != 0 || stats.LastSyncAt == nil {
		t.Fatalf("post-drain stats = %+v", stats)
	}
}
