/*
ledger.go - Activity ledger: upsert today, truncate, persist, derive

PURPOSE:
  The write path for daily activity. RecordToday merges a partial update
  into today's record, keeps the ledger sorted and capped, persists it,
  and mirrors fasted days into the legacy date list.

UPSERT SEMANTICS:
  One record per date. Recording twice on the same day merges fields
  (second write wins per field); it never creates a duplicate date.

FAILURE SEMANTICS:
  Same boundary rules as the cache: storage and decode failures are
  logged and degrade to an empty ledger on read and a silent no-op on
  write. The merged record is still returned so the UI stays responsive;
  the worst outcome is a stale ledger, never a crash.
*/
package habits

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/noor/habit-engine/engine"
)

// Ledger owns the persisted activity history.
type Ledger struct {
	store  engine.KVStore
	logger *log.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewLedger creates a ledger over the given store.
func NewLedger(store engine.KVStore, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{store: store, logger: logger, now: time.Now}
}

// RecordToday upserts today's record with the given partial update,
// re-sorts the ledger ascending by date, truncates to the most recent
// MaxLedgerDays dates, persists, and returns the merged record. Streaks
// are derived on read, so persisting the ledger is all the recomputation
// trigger there is.
func (l *Ledger) RecordToday(ctx context.Context, update ActivityUpdate) DailyActivityRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.now().Format(DateLayout)
	records := l.loadLocked(ctx)

	idx := -1
	for i, r := range records {
		if r.Date == today {
			idx = i
			break
		}
	}
	if idx < 0 {
		records = append(records, DailyActivityRecord{Date: today})
		idx = len(records) - 1
	}

	merged := mergeRecord(records[idx], update)
	records[idx] = merged

	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	if len(records) > MaxLedgerDays {
		// Oldest entries are dropped silently, not archived.
		records = records[len(records)-MaxLedgerDays:]
	}

	l.persistLocked(ctx, records)
	l.mirrorFastingDaysLocked(ctx, records)
	return merged
}

// Records returns the ledger ascending by date. Failures degrade to empty.
func (l *Ledger) Records(ctx context.Context) []DailyActivityRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked(ctx)
}

// Streaks recomputes all three counters from the full ledger.
func (l *Ledger) Streaks(ctx context.Context) StreakState {
	return ComputeStreaks(l.Records(ctx), l.now())
}

// FastingDays returns the legacy fasted-day date list, ascending.
func (l *Ledger) FastingDays(ctx context.Context) []string {
	raw, found, err := l.store.Get(ctx, KeyFastingDays)
	if err != nil {
		l.logger.Printf("[Ledger] %v", &engine.StorageError{Op: "get", Key: KeyFastingDays, Cause: err})
		return nil
	}
	if !found {
		return nil
	}
	var days []string
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		l.logger.Printf("[Ledger] %v", &engine.DecodeError{Key: KeyFastingDays, Cause: err})
		return nil
	}
	return days
}

func mergeRecord(current DailyActivityRecord, update ActivityUpdate) DailyActivityRecord {
	if update.PrayersCompleted != nil {
		current.PrayersCompleted = clampPrayers(*update.PrayersCompleted)
	}
	if update.QuranRead != nil {
		current.QuranRead = *update.QuranRead
	}
	if update.Fasted != nil {
		current.Fasted = *update.Fasted
	}
	return current
}

func clampPrayers(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxDailyPrayers {
		return MaxDailyPrayers
	}
	return n
}

func (l *Ledger) loadLocked(ctx context.Context) []DailyActivityRecord {
	raw, found, err := l.store.Get(ctx, KeyActivityLedger)
	if err != nil {
		l.logger.Printf("[Ledger] %v", &engine.StorageError{Op: "get", Key: KeyActivityLedger, Cause: err})
		return nil
	}
	if !found {
		return nil
	}
	var records []DailyActivityRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		l.logger.Printf("[Ledger] %v", &engine.DecodeError{Key: KeyActivityLedger, Cause: err})
		return nil
	}
	return records
}

func (l *Ledger) persistLocked(ctx context.Context, records []DailyActivityRecord) {
	raw, err := json.Marshal(records)
	if err != nil {
		l.logger.Printf("[Ledger] marshal failed: %v", err)
		return
	}
	if err := l.store.Set(ctx, KeyActivityLedger, string(raw)); err != nil {
		l.logger.Printf("[Ledger] %v", &engine.StorageError{Op: "set", Key: KeyActivityLedger, Cause: err})
	}
}

// mirrorFastingDaysLocked rebuilds ledger:fasting-days from the unified
// ledger so pre-ledger clients keep working.
func (l *Ledger) mirrorFastingDaysLocked(ctx context.Context, records []DailyActivityRecord) {
	var days []string
	for _, r := range records {
		if r.Fasted {
			days = append(days, r.Date)
		}
	}
	if days == nil {
		days = []string{}
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return
	}
	if err := l.store.Set(ctx, KeyFastingDays, string(raw)); err != nil {
		l.logger.Printf("[Ledger] %v", &engine.StorageError{Op: "set", Key: KeyFastingDays, Cause: err})
	}
}
