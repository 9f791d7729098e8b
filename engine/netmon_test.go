package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"testing"
)

// fakeProvider is a hand-driven connectivity source for tests.
type fakeProvider struct {
	mu       sync.Mutex
	sample   ConnectivitySample
	fetchErr error
	emit     func(ConnectivitySample)
}

func (f *fakeProvider) Fetch(context.Context) (ConnectivitySample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return ConnectivitySample{}, f.fetchErr
	}
	return f.sample, nil
}

func (f *fakeProvider) Subscribe(fn func(ConnectivitySample)) (cancel func()) {
	f.mu.Lock()
	f.emit = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.emit = nil
		f.mu.Unlock()
	}
}

// Push delivers a sample as if the platform reported it.
func (f *fakeProvider) Push(s ConnectivitySample) {
	f.mu.Lock()
	emit := f.emit
	f.mu.Unlock()
	if emit != nil {
		emit(s)
	}
}

func boolPtr(b bool) *bool { return &b }

func online() ConnectivitySample {
	return ConnectivitySample{Connected: true, InternetReachable: boolPtr(true), Transport: "wifi"}
}

func offline() ConnectivitySample {
	return ConnectivitySample{Connected: false, InternetReachable: boolPtr(false)}
}

// =============================================================================
// STATUS DERIVATION
// =============================================================================

func TestMonitor_StartsPessimisticallyOffline(t *testing.T) {
	m := NewMonitor(&fakeProvider{}, log.Default())
	if !m.Status().Offline {
		t.Error("status before the first sample must be offline")
	}
}

func TestMonitor_UnknownReachabilityIsNotOffline(t *testing.T) {
	// GIVEN: Connected, but reachability not yet determined (nil)
	// WHEN: The sample is applied
	// THEN: Not offline; unknown is not a failure

	p := &fakeProvider{}
	m := NewMonitor(p, log.Default())
	m.Start()
	defer m.Stop()

	p.Push(ConnectivitySample{Connected: true, InternetReachable: nil, Transport: "cellular"})

	st := m.Status()
	if st.Offline {
		t.Error("nil reachability must not count as offline")
	}
	if st.InternetReachable != nil {
		t.Error("unknown reachability should stay nil in the snapshot")
	}
}

func TestMonitor_ConnectedButUnreachableIsOffline(t *testing.T) {
	// Captive portal case: link up, internet confirmed unreachable.
	p := &fakeProvider{}
	m := NewMonitor(p, log.Default())
	m.Start()
	defer m.Stop()

	p.Push(ConnectivitySample{Connected: true, InternetReachable: boolPtr(false), Transport: "wifi"})
	if !m.Status().Offline {
		t.Error("confirmed-unreachable must be offline even while connected")
	}
}

// =============================================================================
// EDGE COALESCING
// =============================================================================

func TestMonitor_ReconnectNotifiesExactlyOncePerEdge(t *testing.T) {
	// GIVEN: A flaky link firing several "connected" samples in a row
	// WHEN: The samples arrive
	// THEN: The online callback fires once per offline-to-online edge

	p := &fakeProvider{}
	m := NewMonitor(p, log.Default())

	var onlineCount, offlineCount int
	m.OnOnline(func() { onlineCount++ })
	m.OnOffline(func() { offlineCount++ })
	m.Start()
	defer m.Stop()

	p.Push(online())
	p.Push(online())
	p.Push(online())
	if onlineCount != 1 {
		t.Fatalf("online fired %d times for one edge", onlineCount)
	}

	p.Push(offline())
	p.Push(offline())
	if offlineCount != 1 {
		t.Fatalf("offline fired %d times for one edge", offlineCount)
	}

	p.Push(online())
	if onlineCount != 2 {
		t.Fatalf("second reconnect edge not detected, count = %d", onlineCount)
	}
}

func TestMonitor_FirstSampleOnlineProducesAnEdge(t *testing.T) {
	// The monitor starts offline, so a startup-online device still gets
	// its initial drain trigger.
	p := &fakeProvider{}
	m := NewMonitor(p, log.Default())

	fired := false
	m.OnOnline(func() { fired = true })
	m.Start()
	defer m.Stop()

	p.Push(online())
	if !fired {
		t.Error("startup online sample must produce an online edge")
	}
}

// =============================================================================
// MANUAL REFRESH
// =============================================================================

func TestMonitor_Refresh_AppliesFetchedSample(t *testing.T) {
	p := &fakeProvider{sample: online()}
	m := NewMonitor(p, log.Default())

	st := m.Refresh(context.Background())
	if st.Offline || st.Transport != "wifi" {
		t.Errorf("refresh snapshot = %+v", st)
	}
}

func TestMonitor_Refresh_FetchFailureLeavesStatusUntouched(t *testing.T) {
	// GIVEN: A known-online status, then a provider that errors on fetch
	// WHEN: Refreshing
	// THEN: The prior status is returned unchanged

	p := &fakeProvider{sample: online()}
	m := NewMonitor(p, log.Default())
	m.Refresh(context.Background())

	p.mu.Lock()
	p.fetchErr = errors.New("probe timeout")
	p.mu.Unlock()

	st := m.Refresh(context.Background())
	if st.Offline {
		t.Error("failed fetch must not flip the status")
	}
}

func TestMonitor_Refresh_TriggersEdgeCallbacks(t *testing.T) {
	// A manual refresh that discovers a reconnect behaves like a pushed
	// sample: the edge fires.
	p := &fakeProvider{sample: online()}
	m := NewMonitor(p, log.Default())

	fired := false
	m.OnOnline(func() { fired = true })

	m.Refresh(context.Background())
	if !fired {
		t.Error("refresh-discovered reconnect must fire the online edge")
	}
}
