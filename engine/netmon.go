/*
netmon.go - Network monitor with edge-triggered reconnect notification

PURPOSE:
  Maintains the current NetworkStatus by consuming samples from the
  injected connectivity provider, and tells the sync machinery when the
  device transitions from offline to online.

EDGE COALESCING:
  A flaky connection can fire several "connected" samples in quick
  succession. The monitor notifies exactly once per offline-to-online
  transition, not once per sample. No debouncing beyond that: every
  sample updates the status immediately, and callers needing stability
  must debounce themselves.
*/
package engine

import (
	"context"
	"log"
	"sync"
)

// Monitor tracks connectivity and fires callbacks on status edges.
type Monitor struct {
	provider ConnectivityProvider
	logger   *log.Logger

	mu        sync.Mutex
	status    NetworkStatus
	onOnline  []func()
	onOffline []func()
	cancel    func()
}

// NewMonitor creates a monitor over the given provider. Until the first
// sample arrives the status is offline: the engine starts pessimistic and
// the first "connected" sample produces an online edge.
func NewMonitor(provider ConnectivityProvider, logger *log.Logger) *Monitor {
	if logger == nil {
		logger = log.Default()
	}
	return &Monitor{
		provider: provider,
		logger:   logger,
		status:   NetworkStatus{Offline: true},
	}
}

// OnOnline registers fn to run once per offline-to-online transition.
// Must be called before Start.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// OnOffline registers fn to run once per online-to-offline transition.
func (m *Monitor) OnOffline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOffline = append(m.onOffline, fn)
}

// Start subscribes to the provider's sample stream.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	cancel := m.provider.Subscribe(m.apply)

	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
}

// Stop cancels the provider subscription.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Status returns the current connectivity snapshot.
func (m *Monitor) Status() NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Refresh performs an on-demand connectivity check and applies the
// result. A failed fetch leaves the current status untouched.
func (m *Monitor) Refresh(ctx context.Context) NetworkStatus {
	sample, err := m.provider.Fetch(ctx)
	if err != nil {
		m.logger.Printf("[NetMon] refresh failed: %v", err)
		return m.Status()
	}
	m.apply(sample)
	return m.Status()
}

// apply updates the status and fires edge callbacks. Callbacks run
// outside the lock so they may call back into the monitor.
func (m *Monitor) apply(sample ConnectivitySample) {
	next := statusFromSample(sample)

	m.mu.Lock()
	wasOffline := m.status.Offline
	m.status = next
	var fire []func()
	switch {
	case wasOffline && !next.Offline:
		fire = append(fire, m.onOnline...)
	case !wasOffline && next.Offline:
		fire = append(fire, m.onOffline...)
	}
	m.mu.Unlock()

	if len(fire) > 0 {
		if next.Offline {
			m.logger.Printf("[NetMon] went offline (connected=%v)", next.Connected)
		} else {
			m.logger.Printf("[NetMon] back online via %s", next.Transport)
		}
	}
	for _, fn := range fire {
		fn()
	}
}
