package habits

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyLedgerYieldsZeroRates(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Days)
	assert.True(t, s.PrayerRate.IsZero())
	assert.True(t, s.FastingRate.IsZero())
	assert.True(t, s.QuranRate.IsZero())
}

func TestSummarize_RatesUseDecimalArithmetic(t *testing.T) {
	// GIVEN: 3 recorded days: 5+4+3 prayers, 2 fasted, 1 Quran day
	// WHEN: Summarizing
	// THEN: 12/15, 2/3, 1/3, each rounded to four places

	records := []DailyActivityRecord{
		{Date: "2025-03-08", PrayersCompleted: 5, Fasted: true, QuranRead: true},
		{Date: "2025-03-09", PrayersCompleted: 4, Fasted: true},
		{Date: "2025-03-10", PrayersCompleted: 3},
	}

	s := Summarize(records)
	assert.Equal(t, 3, s.Days)
	assert.Equal(t, 12, s.TotalPrayers)
	assert.Equal(t, 2, s.DaysFasted)
	assert.Equal(t, 1, s.DaysQuranRead)

	assert.True(t, s.PrayerRate.Equal(decimal.RequireFromString("0.8")),
		"12/15 = 0.8, got %s", s.PrayerRate)
	assert.True(t, s.FastingRate.Equal(decimal.RequireFromString("0.6667")),
		"2/3 rounds to 0.6667, got %s", s.FastingRate)
	assert.True(t, s.QuranRate.Equal(decimal.RequireFromString("0.3333")),
		"1/3 rounds to 0.3333, got %s", s.QuranRate)
}

func TestSummarize_PerfectWindowIsExactlyOne(t *testing.T) {
	records := []DailyActivityRecord{
		{Date: "2025-03-09", PrayersCompleted: 5, Fasted: true, QuranRead: true},
		{Date: "2025-03-10", PrayersCompleted: 5, Fasted: true, QuranRead: true},
	}

	s := Summarize(records)
	one := decimal.NewFromInt(1)
	assert.True(t, s.PrayerRate.Equal(one))
	assert.True(t, s.FastingRate.Equal(one))
	assert.True(t, s.QuranRate.Equal(one))
}
