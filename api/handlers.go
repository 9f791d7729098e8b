/*
handlers.go - HTTP API handlers for the offline engine

PURPOSE:
  Exposes the engine to the UI layer via REST. Handles HTTP
  request/response, JSON serialization, and delegates to the engine and
  the activity ledger. The UI only ever reads snapshots and issues
  commands; all invariants live below this layer.

ENDPOINTS:
  Status:
    GET    /api/status                 Connectivity + sync snapshot
    POST   /api/network/refresh        On-demand connectivity check
    POST   /api/banner/dismiss         Hide the offline banner

  Queue & sync:
    GET    /api/queue                  Pending offline actions
    POST   /api/queue                  Enqueue a remote mutation
    DELETE /api/queue/{id}             Drop one action
    POST   /api/sync                   Manual queue drain

  Activity:
    GET    /api/activity               Ledger records (ascending)
    POST   /api/activity/today         Record today's activity
    GET    /api/streaks                Derived streak counters
    GET    /api/summary                Completion-rate summary
    GET    /api/fasting-days           Legacy fasted-day list

  Cache:
    GET    /api/cache/{domain}         Cached domain value
                                       (?stale=1 ignores expiry)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown cache domain or action id
  - 500: Storage failures on the durability-critical paths

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/noor/habit-engine/engine"
	"github.com/noor/habit-engine/habits"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *engine.Engine
	Ledger *habits.Ledger
}

// NewHandler creates a new handler over the engine and ledger.
func NewHandler(eng *engine.Engine, ledger *habits.Ledger) *Handler {
	return &Handler{Engine: eng, Ledger: ledger}
}

// =============================================================================
// STATUS HANDLERS
// =============================================================================

// GetStatus returns the combined connectivity and sync snapshot.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusDTO{
		Network:              h.Engine.NetworkStatus(),
		Sync:                 toSyncStatsDTO(h.Engine.SyncStats(r.Context())),
		OfflineBannerVisible: h.Engine.OfflineBannerVisible(),
	})
}

// RefreshNetwork performs an on-demand connectivity re-check.
func (h *Handler) RefreshNetwork(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.RefreshNetworkStatus(r.Context()))
}

// DismissBanner hides the offline banner until the next offline period.
func (h *Handler) DismissBanner(w http.ResponseWriter, r *http.Request) {
	h.Engine.DismissOfflineBanner()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// QUEUE & SYNC HANDLERS
// =============================================================================

// ListQueue returns pending offline actions, front to back.
func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toActionDTOs(h.Engine.Queue().List(r.Context())))
}

// EnqueueAction queues a remote mutation for later replay.
func (h *Handler) EnqueueAction(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	kind := engine.ActionKind(req.Kind)
	switch kind {
	case engine.ActionCreate, engine.ActionUpdate, engine.ActionDelete:
	default:
		writeError(w, http.StatusBadRequest, "kind must be create, update, or delete", nil)
		return
	}
	if req.Resource == "" {
		writeError(w, http.StatusBadRequest, "resource is required", nil)
		return
	}

	id, err := h.Engine.Enqueue(r.Context(), engine.ActionDraft{
		Kind:     kind,
		Resource: req.Resource,
		Payload:  req.Payload,
	})
	if err != nil {
		// The one path where a storage failure surfaces: the caller must
		// know the action was not durably captured.
		writeError(w, http.StatusInternalServerError, "Failed to persist action", err)
		return
	}

	writeJSON(w, http.StatusCreated, EnqueueResponse{ID: id})
}

// RemoveAction drops one queued action by id.
func (h *Handler) RemoveAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Engine.Queue().RemoveByID(r.Context(), id); err != nil {
		if errors.Is(err, engine.ErrActionNotFound) {
			writeError(w, http.StatusNotFound, "Action not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to remove action", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TriggerSync drains the queue now (manual retry).
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.SyncOfflineActions(r.Context()))
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

// ListActivity returns the ledger ascending by date.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	records := h.Ledger.Records(r.Context())
	if records == nil {
		records = []habits.DailyActivityRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// RecordToday merges a partial update into today's record.
func (h *Handler) RecordToday(w http.ResponseWriter, r *http.Request) {
	var req RecordTodayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PrayersCompleted == nil && req.QuranRead == nil && req.Fasted == nil {
		writeError(w, http.StatusBadRequest, "at least one activity field is required", nil)
		return
	}

	record := h.Ledger.RecordToday(r.Context(), habits.ActivityUpdate{
		PrayersCompleted: req.PrayersCompleted,
		QuranRead:        req.QuranRead,
		Fasted:           req.Fasted,
	})

	writeJSON(w, http.StatusOK, RecordTodayResponse{
		Record:  record,
		Streaks: h.Ledger.Streaks(r.Context()),
	})
}

// GetStreaks returns the derived streak counters.
func (h *Handler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Ledger.Streaks(r.Context()))
}

// GetSummary returns completion rates over the retained window.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, habits.Summarize(h.Ledger.Records(r.Context())))
}

// ListFastingDays returns the legacy fasted-day date list.
func (h *Handler) ListFastingDays(w http.ResponseWriter, r *http.Request) {
	days := h.Ledger.FastingDays(r.Context())
	if days == nil {
		days = []string{}
	}
	writeJSON(w, http.StatusOK, days)
}

// =============================================================================
// CACHE HANDLERS
// =============================================================================

// GetCacheDomain serves one cached domain. With ?stale=1 the read
// ignores expiry (offline fallback rendering); otherwise an expired
// entry is evicted and reported as not found.
func (h *Handler) GetCacheDomain(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	key := "cache:" + domain
	if !isKnownCacheDomain(key) {
		writeError(w, http.StatusNotFound, "Unknown cache domain", nil)
		return
	}

	cache := h.Engine.Cache()
	dto := CacheReadDTO{Domain: domain}

	if r.URL.Query().Get("stale") == "1" {
		var data json.RawMessage
		stale := cache.GetIgnoringExpiry(r.Context(), key, &data)
		dto.Found = stale.Found
		dto.Expired = stale.Expired
		dto.AgeMs = stale.Age.Milliseconds()
		dto.Data = data
	} else {
		var data json.RawMessage
		dto.Found = cache.Get(r.Context(), key, &data)
		dto.Data = data
	}

	writeJSON(w, http.StatusOK, dto)
}

func isKnownCacheDomain(key string) bool {
	for _, d := range engine.CacheDomains {
		if d == key {
			return true
		}
	}
	return false
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Code = errorCode(err)
	}
	writeJSON(w, status, resp)
}

func errorCode(err error) string {
	switch {
	case engine.IsDecodeFailure(err):
		return "decode_failure"
	case engine.IsStorageFailure(err):
		return "storage_failure"
	case errors.Is(err, engine.ErrActionNotFound):
		return "not_found"
	default:
		return ""
	}
}
