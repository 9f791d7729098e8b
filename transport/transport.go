/*
Package transport supplies the engine's two injected collaborators.

PURPOSE:
  The engine only knows two outward-facing contracts: "apply this action
  remotely" and "tell me about connectivity". This package provides the
  production implementations of both, over plain HTTP:

  - Processor posts queued actions to the remote API
  - Probe derives connectivity samples from a lightweight reachability
    check, polled on an interval

  Swapping these for test doubles is the whole point of the injection;
  nothing in engine/ imports this package.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/noor/habit-engine/engine"
)

// =============================================================================
// REMOTE ACTION PROCESSOR
// =============================================================================

// Processor replays offline actions against the remote API.
type Processor struct {
	BaseURL string
	Client  *http.Client
}

// NewProcessor creates a processor posting to baseURL.
func NewProcessor(baseURL string) *Processor {
	return &Processor{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Process implements engine.ActionProcessor. A non-2xx response is a
// failure: the engine keeps the action queued and retries later.
func (p *Processor) Process(ctx context.Context, action engine.OfflineAction) error {
	body, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encode action %s: %w", action.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/actions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", action.ID)

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote rejected action %s: %s", action.ID, resp.Status)
	}
	return nil
}

// =============================================================================
// CONNECTIVITY PROBE
// =============================================================================

// Probe implements engine.ConnectivityProvider by polling a reachability
// URL. A completed HEAD request means connected and reachable; any
// transport error means disconnected.
type Probe struct {
	URL      string
	Interval time.Duration
	Client   *http.Client

	mu          sync.Mutex
	subscribers []func(engine.ConnectivitySample)
	stop        chan struct{}
	started     bool
}

// NewProbe creates a probe against url, polling at the given interval.
func NewProbe(url string, interval time.Duration) *Probe {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Probe{
		URL:      url,
		Interval: interval,
		Client:   &http.Client{Timeout: 5 * time.Second},
		stop:     make(chan struct{}),
	}
}

// Fetch performs a one-shot reachability check.
func (p *Probe) Fetch(ctx context.Context) (engine.ConnectivitySample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return engine.ConnectivitySample{}, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		unreachable := false
		return engine.ConnectivitySample{
			Connected:         false,
			InternetReachable: &unreachable,
		}, nil
	}
	resp.Body.Close()

	reachable := true
	return engine.ConnectivitySample{
		Connected:         true,
		InternetReachable: &reachable,
		Transport:         "http",
	}, nil
}

// Subscribe registers fn and starts the polling loop on first use.
func (p *Probe) Subscribe(fn func(engine.ConnectivitySample)) (cancel func()) {
	p.mu.Lock()
	p.subscribers = append(p.subscribers, fn)
	idx := len(p.subscribers) - 1
	if !p.started {
		p.started = true
		go p.poll()
	}
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		p.subscribers[idx] = nil
		p.mu.Unlock()
	}
}

// Close stops the polling loop.
func (p *Probe) Close() {
	p.mu.Lock()
	if p.started {
		close(p.stop)
		p.started = false
	}
	p.mu.Unlock()
}

func (p *Probe) poll() {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		sample, err := p.Fetch(context.Background())
		if err == nil {
			p.broadcast(sample)
		}
		select {
		case <-ticker.C:
		case <-p.stop:
			return
		}
	}
}

func (p *Probe) broadcast(sample engine.ConnectivitySample) {
	p.mu.Lock()
	subs := make([]func(engine.ConnectivitySample), len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(sample)
		}
	}
}
