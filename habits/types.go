/*
Package habits tracks daily worship activity and derives streaks.

PURPOSE:
  Maintains the capped, date-keyed history of daily activity (prayers
  completed, Quran reading, fasting) and recomputes the three independent
  streak counters from it. The ledger is the source of truth; streaks are
  always derived from scratch, never updated incrementally, so they
  cannot drift.

KEY CONCEPTS IN THIS FILE (types.go):
  - DailyActivityRecord: one entry per calendar day, upsert semantics
  - ActivityUpdate: a partial record merged into today's entry
  - StreakState: the three derived counters

RETENTION:
  The ledger keeps the most recent 49 dates. Older entries are dropped
  silently on every write, not archived. 49 days comfortably covers the
  longest streak display the UI offers (a full week of weeks).

SEE ALSO:
  - ledger.go:  Persistence and upsert/truncate
  - streaks.go: The backward scan
  - summary.go: Completion rates over the retained window
*/
package habits

// DateLayout is the ISO calendar-day format used as the ledger key.
const DateLayout = "2006-01-02"

const (
	// MaxLedgerDays is the retention cap applied after every write.
	MaxLedgerDays = 49

	// MaxDailyPrayers is the number of obligatory daily prayers.
	MaxDailyPrayers = 5
)

// DailyActivityRecord is one calendar day of activity. The ledger holds
// at most one record per date, ordered ascending by date.
type DailyActivityRecord struct {
	Date             string `json:"date"`
	PrayersCompleted int    `json:"prayers_completed"`
	QuranRead        bool   `json:"quran_read"`
	Fasted           bool   `json:"fasted"`
}

// ActivityUpdate is a partial record. Nil fields keep whatever today's
// record already holds; set fields overwrite (last-write-wins).
type ActivityUpdate struct {
	PrayersCompleted *int  `json:"prayers_completed,omitempty"`
	QuranRead        *bool `json:"quran_read,omitempty"`
	Fasted           *bool `json:"fasted,omitempty"`
}

// StreakState holds the three derived counters. Fully derived from the
// ledger; never persisted independently.
type StreakState struct {
	PrayerStreak  int `json:"prayer_streak"`
	FastingStreak int `json:"fasting_streak"`
	QuranStreak   int `json:"quran_streak"`
}

// Ledger storage keys. Fasting days are mirrored into a standalone date
// array for backward compatibility with clients that predate the unified
// ledger.
const (
	KeyActivityLedger = "ledger:activity"
	KeyFastingDays    = "ledger:fasting-days"
)
