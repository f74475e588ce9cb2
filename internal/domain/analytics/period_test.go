package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParsePeriod(t *testing.T) {
	t.Run("accepts all granularities", func(t *testing.T) {
		for _, s := range []string{"daily", "weekly", "monthly", "quarterly", "yearly"} {
			p, ok := ParsePeriod(s)
			assert.True(t, ok)
			assert.Equal(t, Period(s), p)
		}
	})

	t.Run("empty defaults to monthly", func(t *testing.T) {
		p, ok := ParsePeriod("")
		assert.True(t, ok)
		assert.Equal(t, PeriodMonthly, p)
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, ok := ParsePeriod("hourly")
		assert.False(t, ok)
	})
}

func TestPeriodStart(t *testing.T) {
	t.Run("daily", func(t *testing.T) {
		assert.Equal(t, date(2026, 1, 15), PeriodDaily.Start(date(2026, 1, 15)))
	})

	t.Run("weekly snaps to monday", func(t *testing.T) {
		// 2026-01-15 is a Thursday.
		assert.Equal(t, date(2026, 1, 12), PeriodWeekly.Start(date(2026, 1, 15)))
	})

	t.Run("weekly monday maps to itself", func(t *testing.T) {
		assert.Equal(t, date(2026, 1, 12), PeriodWeekly.Start(date(2026, 1, 12)))
	})

	t.Run("weekly sunday snaps back six days", func(t *testing.T) {
		assert.Equal(t, date(2026, 1, 12), PeriodWeekly.Start(date(2026, 1, 18)))
	})

	t.Run("monthly", func(t *testing.T) {
		assert.Equal(t, date(2026, 3, 1), PeriodMonthly.Start(date(2026, 3, 25)))
	})

	t.Run("quarterly", func(t *testing.T) {
		assert.Equal(t, date(2026, 4, 1), PeriodQuarterly.Start(date(2026, 5, 15)))
		assert.Equal(t, date(2026, 10, 1), PeriodQuarterly.Start(date(2026, 11, 1)))
	})

	t.Run("yearly", func(t *testing.T) {
		assert.Equal(t, date(2026, 1, 1), PeriodYearly.Start(date(2026, 7, 4)))
	})

	t.Run("discards time of day", func(t *testing.T) {
		d := time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)
		assert.Equal(t, date(2026, 1, 15), PeriodDaily.Start(d))
	})
}

func TestPeriodEnd(t *testing.T) {
	t.Run("daily", func(t *testing.T) {
		assert.Equal(t, date(2026, 1, 15), PeriodDaily.End(date(2026, 1, 15)))
	})

	t.Run("weekly", func(t *testing.T) {
		assert.Equal(t, date(2026, 1, 18), PeriodWeekly.End(date(2026, 1, 12)))
	})

	t.Run("monthly handles month lengths", func(t *testing.T) {
		assert.Equal(t, date(2026, 1, 31), PeriodMonthly.End(date(2026, 1, 1)))
		assert.Equal(t, date(2026, 2, 28), PeriodMonthly.End(date(2026, 2, 1)))
		assert.Equal(t, date(2026, 12, 31), PeriodMonthly.End(date(2026, 12, 1)))
	})

	t.Run("monthly leap february", func(t *testing.T) {
		assert.Equal(t, date(2028, 2, 29), PeriodMonthly.End(date(2028, 2, 1)))
	})

	t.Run("quarterly year boundary", func(t *testing.T) {
		assert.Equal(t, date(2026, 3, 31), PeriodQuarterly.End(date(2026, 1, 1)))
		assert.Equal(t, date(2026, 12, 31), PeriodQuarterly.End(date(2026, 10, 1)))
	})

	t.Run("yearly", func(t *testing.T) {
		assert.Equal(t, date(2026, 12, 31), PeriodYearly.End(date(2026, 1, 1)))
	})
}

func TestPeriodBucketProperties(t *testing.T) {
	periods := []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}
	dates := []time.Time{
		date(2026, 1, 1),
		date(2026, 2, 28),
		date(2026, 6, 15),
		date(2026, 12, 31),
		date(2028, 2, 29),
	}

	t.Run("start before or equal date before or equal end", func(t *testing.T) {
		for _, p := range periods {
			for _, d := range dates {
				start := p.Start(d)
				end := p.End(start)
				assert.False(t, d.Before(start), "%s %s", p, d)
				assert.False(t, d.After(end), "%s %s", p, d)
			}
		}
	})

	t.Run("start is idempotent", func(t *testing.T) {
		for _, p := range periods {
			for _, d := range dates {
				start := p.Start(d)
				assert.Equal(t, start, p.Start(start), "%s %s", p, d)
			}
		}
	})
}
