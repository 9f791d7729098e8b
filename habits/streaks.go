/*
streaks.go - Consecutive-day streak derivation

PURPOSE:
  Derives the three streak counters by scanning backward from today.
  Always recomputed from the full ledger on demand; incremental updates
  were rejected because they drift under out-of-order writes.

ALGORITHM (per habit):
  1. Sort the ledger descending by date.
  2. For i = 0, 1, 2, ...: expected = today - i days (local calendar day).
  3. If record[i]'s date is not exactly expected, stop; streak = i.
  4. Else if the habit's condition holds, count it and continue;
     otherwise stop.

CONSEQUENCE (intended, not a bug):
  If today has no record yet, the scan fails at i = 0 and the streak is
  0 even when yesterday ended a long run. There is no grace period for
  "today in progress". Empty ledger means all streaks are 0.
*/
package habits

import (
	"sort"
	"time"
)

// ComputeStreaks derives all three counters from records, scanning
// backward from the calendar day containing now (local time).
func ComputeStreaks(records []DailyActivityRecord, now time.Time) StreakState {
	sorted := make([]DailyActivityRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	return StreakState{
		PrayerStreak: streakFor(sorted, now, func(r DailyActivityRecord) bool {
			return r.PrayersCompleted >= 1
		}),
		FastingStreak: streakFor(sorted, now, func(r DailyActivityRecord) bool {
			return r.Fasted
		}),
		QuranStreak: streakFor(sorted, now, func(r DailyActivityRecord) bool {
			return r.QuranRead
		}),
	}
}

// streakFor counts consecutive qualifying days ending today. sorted must
// be descending by date.
func streakFor(sorted []DailyActivityRecord, now time.Time, holds func(DailyActivityRecord) bool) int {
	streak := 0
	for i := range sorted {
		expected := now.AddDate(0, 0, -i).Format(DateLayout)
		if sorted[i].Date != expected {
			break
		}
		if !holds(sorted[i]) {
			break
		}
		streak++
	}
	return streak
}
