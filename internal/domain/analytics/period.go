package analytics

import "time"

// Period is the calendar granularity used to bucket orders.
type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// ParsePeriod converts a string into a Period, defaulting to monthly
// for empty input. Unknown values return false.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return Period(s), true
	case "":
		return PeriodMonthly, true
	default:
		return "", false
	}
}

// IsValid reports whether p is one of the supported granularities.
func (p Period) IsValid() bool {
	_, ok := ParsePeriod(string(p))
	return ok && p != ""
}

// DateOf truncates t to a UTC calendar date. All bucket arithmetic
// works on these normalized values so they are safe as map keys.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Start returns the canonical bucket-start date (the period key) for the
// bucket containing d.
func (p Period) Start(d time.Time) time.Time {
	d = DateOf(d)
	switch p {
	case PeriodWeekly:
		// Most recent Monday on or before d (ISO week).
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodQuarterly:
		q := (int(d.Month()) - 1) / 3
		return time.Date(d.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYearly:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default: // daily
		return d
	}
}

// End returns the last date of the bucket that begins at start.
// Month and quarter ends are derived as first-of-next minus one day,
// which handles month lengths and leap years.
func (p Period) End(start time.Time) time.Time {
	start = DateOf(start)
	switch p {
	case PeriodWeekly:
		return start.AddDate(0, 0, 6)
	case PeriodMonthly:
		return time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	case PeriodQuarterly:
		return time.Date(start.Year(), start.Month()+3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	case PeriodYearly:
		return time.Date(start.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default: // daily
		return start
	}
}
