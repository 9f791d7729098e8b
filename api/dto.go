/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's internal model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/noor/habit-engine/engine"
	"github.com/noor/habit-engine/habits"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// StatusDTO is the combined connectivity + sync snapshot.
type StatusDTO struct {
	Network              engine.NetworkStatus `json:"network"`
	Sync                 SyncStatsDTO         `json:"sync"`
	OfflineBannerVisible bool                 `json:"offline_banner_visible"`
}

// SyncStatsDTO mirrors engine.SyncStats with a formatted timestamp.
type SyncStatsDTO struct {
	QueueSize      int     `json:"queue_size"`
	LastSyncAt     *string `json:"last_sync_at"`
	SyncInProgress bool    `json:"sync_in_progress"`
}

// ActionDTO represents one queued offline action.
type ActionDTO struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Resource string          `json:"resource"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	QueuedAt string          `json:"queued_at"`
}

// EnqueueRequest is the request to queue a remote mutation.
type EnqueueRequest struct {
	Kind     string          `json:"kind"`
	Resource string          `json:"resource"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// EnqueueResponse returns the assigned action id.
type EnqueueResponse struct {
	ID string `json:"id"`
}

// RecordTodayRequest carries a partial activity update; absent fields
// keep today's recorded values.
type RecordTodayRequest struct {
	PrayersCompleted *int  `json:"prayers_completed,omitempty"`
	QuranRead        *bool `json:"quran_read,omitempty"`
	Fasted           *bool `json:"fasted,omitempty"`
}

// RecordTodayResponse returns the merged record and the freshly derived
// streaks.
type RecordTodayResponse struct {
	Record  habits.DailyActivityRecord `json:"record"`
	Streaks habits.StreakState         `json:"streaks"`
}

// CacheReadDTO is the response for a cache domain read.
type CacheReadDTO struct {
	Domain  string          `json:"domain"`
	Found   bool            `json:"found"`
	Expired bool            `json:"expired"`
	AgeMs   int64           `json:"age_ms"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSyncStatsDTO(s engine.SyncStats) SyncStatsDTO {
	dto := SyncStatsDTO{
		QueueSize:      s.QueueSize,
		SyncInProgress: s.SyncInProgress,
	}
	if s.LastSyncAt != nil {
		ts := s.LastSyncAt.Format(time.RFC3339)
		dto.LastSyncAt = &ts
	}
	return dto
}

func toActionDTO(a engine.OfflineAction) ActionDTO {
	return ActionDTO{
		ID:       a.ID,
		Kind:     string(a.Kind),
		Resource: a.Resource,
		Payload:  a.Payload,
		QueuedAt: a.QueuedAt.Format(time.RFC3339),
	}
}

func toActionDTOs(actions []engine.OfflineAction) []ActionDTO {
	dtos := make([]ActionDTO, len(actions))
	for i, a := range actions {
		dtos[i] = toActionDTO(a)
	}
	return dtos
}
