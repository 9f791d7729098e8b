package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noor/habit-engine/engine"
	"github.com/noor/habit-engine/transport"
)

// =============================================================================
// PROCESSOR
// =============================================================================

func TestProcessor_PostsActionWithIdempotencyKey(t *testing.T) {
	// GIVEN: A remote accepting POST /actions
	// WHEN: Processing a queued action
	// THEN: The action body and idempotency header arrive intact

	var gotBody engine.OfflineAction
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/actions", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	action := engine.OfflineAction{
		ID:       "1741600000000-ab12cd34",
		Kind:     engine.ActionCreate,
		Resource: "prayer-log",
		Payload:  json.RawMessage(`{"date":"2025-03-10"}`),
		QueuedAt: time.Now().UTC(),
	}

	p := transport.NewProcessor(srv.URL)
	require.NoError(t, p.Process(context.Background(), action))
	assert.Equal(t, action.ID, gotKey)
	assert.Equal(t, action.Resource, gotBody.Resource)
}

func TestProcessor_NonSuccessStatusIsAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	}))
	defer srv.Close()

	p := transport.NewProcessor(srv.URL)
	err := p.Process(context.Background(), engine.OfflineAction{ID: "x", Kind: engine.ActionUpdate, Resource: "r"})
	require.Error(t, err, "non-2xx must keep the action queued")
}

func TestProcessor_UnreachableRemoteIsAFailure(t *testing.T) {
	p := transport.NewProcessor("http://127.0.0.1:1")
	err := p.Process(context.Background(), engine.OfflineAction{ID: "x", Kind: engine.ActionDelete, Resource: "r"})
	require.Error(t, err)
}

// =============================================================================
// PROBE
// =============================================================================

func TestProbe_Fetch_ReachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	probe := transport.NewProbe(srv.URL, time.Minute)
	defer probe.Close()

	sample, err := probe.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, sample.Connected)
	require.NotNil(t, sample.InternetReachable)
	assert.True(t, *sample.InternetReachable)
}

func TestProbe_Fetch_UnreachableEndpoint(t *testing.T) {
	// GIVEN: Nothing listening at the probe URL
	// WHEN: Fetching
	// THEN: A disconnected sample, not an error; the monitor treats the
	//       failed probe as being offline, not as unknown

	probe := transport.NewProbe("http://127.0.0.1:1", time.Minute)
	defer probe.Close()

	sample, err := probe.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, sample.Connected)
	require.NotNil(t, sample.InternetReachable)
	assert.False(t, *sample.InternetReachable)
}

func TestProbe_SubscribeDeliversSamples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	probe := transport.NewProbe(srv.URL, 10*time.Millisecond)
	defer probe.Close()

	got := make(chan engine.ConnectivitySample, 1)
	cancel := probe.Subscribe(func(s engine.ConnectivitySample) {
		select {
		case got <- s:
		default:
		}
	})
	defer cancel()

	select {
	case sample := <-got:
		assert.True(t, sample.Connected)
	case <-time.After(2 * time.Second):
		t.Fatal("no sample delivered")
	}
}
