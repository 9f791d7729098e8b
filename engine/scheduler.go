/*
scheduler.go - Periodic refresh-and-sync loop

PURPOSE:
  Optional background ticker that re-checks connectivity and drains the
  queue on an interval. The engine works without it (reconnect edges and
  manual retries cover the common cases); the scheduler papers over
  providers whose event stream is unreliable.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick: refresh status, then attempt a drain (which no-ops when
    offline or already in flight)
  - Start/Stop lifecycle mirroring the rest of the engine

USAGE:
  sched := engine.NewScheduler(eng)
  sched.Start()
  // ... later
  sched.Stop()
*/
package engine

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler periodically refreshes connectivity and triggers a drain.
type Scheduler struct {
	Engine        *Engine
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
	logger *log.Logger
}

// NewScheduler creates a scheduler with a 5 minute interval.
func NewScheduler(eng *Engine) *Scheduler {
	return &Scheduler{
		Engine:        eng,
		CheckInterval: 5 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
		logger:        eng.logger,
	}
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.logger.Println("[Scheduler] Disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()

	s.logger.Printf("[Scheduler] Started with check interval: %v", s.CheckInterval)
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.logger.Println("[Scheduler] Stopped")
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.tick()

	for {
		select {
		case <-s.ticker.C:
			s.tick()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) tick() {
	ctx := context.Background()

	status := s.Engine.RefreshNetworkStatus(ctx)
	if status.Offline {
		return
	}

	if size := s.Engine.Queue().Size(ctx); size > 0 {
		result := s.Engine.SyncOfflineActions(ctx)
		if result.Success > 0 || result.Failed > 0 {
			s.logger.Printf("[Scheduler] Drain: %d succeeded, %d failed", result.Success, result.Failed)
		}
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (s *Scheduler) RunNow() {
	s.tick()
}

// NextRunTime returns when the next scheduled check will occur.
func (s *Scheduler) NextRunTime() time.Time {
	return time.Now().Add(s.CheckInterval)
}
