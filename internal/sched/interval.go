package sched

import "time"

// Interval is the recurrence rule of a job: a pure function from one
// occurrence time to the next.
type Interval string

const (
	IntervalDaily    Interval = "daily"
	IntervalWeekly   Interval = "weekly"
	IntervalBiWeekly Interval = "bi-weekly"
	IntervalMonthly  Interval = "monthly"
	IntervalYearly   Interval = "yearly"
)

func (iv Interval) Valid() bool {
	switch iv {
	case IntervalDaily, IntervalWeekly, IntervalBiWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

// Next returns the due time one interval step after t.
// Results are truncated to whole seconds so a timestamp survives the
// database round-trip unchanged; the advance compare-and-swap depends
// on that equality.
func (iv Interval) Next(t time.Time) time.Time {
	t = t.Truncate(time.Second)
	switch iv {
	case IntervalDaily:
		return t.AddDate(0, 0, 1)
	case IntervalWeekly:
		return t.AddDate(0, 0, 7)
	case IntervalBiWeekly:
		return t.AddDate(0, 0, 14)
	case IntervalMonthly:
		return t.AddDate(0, 1, 0)
	case IntervalYearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}
