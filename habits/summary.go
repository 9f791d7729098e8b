/*
summary.go - Completion rates over the retained ledger window

PURPOSE:
  Aggregates the ledger into per-habit completion rates for the progress
  screen. Rates use decimal arithmetic so 17/21 renders as 0.8095, not a
  binary-float approximation that rounds differently per platform.
*/
package habits

import (
	"github.com/shopspring/decimal"
)

// Summary aggregates the retained ledger window.
type Summary struct {
	Days          int `json:"days"`
	TotalPrayers  int `json:"total_prayers"`
	DaysFasted    int `json:"days_fasted"`
	DaysQuranRead int `json:"days_quran_read"`

	// Rates are 0..1 with four decimal places. PrayerRate is prayers
	// completed over prayers possible (days * 5); the others are
	// qualifying days over recorded days.
	PrayerRate  decimal.Decimal `json:"prayer_rate"`
	FastingRate decimal.Decimal `json:"fasting_rate"`
	QuranRate   decimal.Decimal `json:"quran_rate"`
}

// Summarize computes completion rates over records. An empty ledger
// yields zero rates.
func Summarize(records []DailyActivityRecord) Summary {
	s := Summary{Days: len(records)}
	for _, r := range records {
		s.TotalPrayers += r.PrayersCompleted
		if r.Fasted {
			s.DaysFasted++
		}
		if r.QuranRead {
			s.DaysQuranRead++
		}
	}

	if s.Days == 0 {
		s.PrayerRate = decimal.Zero
		s.FastingRate = decimal.Zero
		s.QuranRate = decimal.Zero
		return s
	}

	days := decimal.NewFromInt(int64(s.Days))
	possiblePrayers := days.Mul(decimal.NewFromInt(MaxDailyPrayers))

	s.PrayerRate = decimal.NewFromInt(int64(s.TotalPrayers)).Div(possiblePrayers).Round(4)
	s.FastingRate = decimal.NewFromInt(int64(s.DaysFasted)).Div(days).Round(4)
	s.QuranRate = decimal.NewFromInt(int64(s.DaysQuranRead)).Div(days).Round(4)
	return s
}
