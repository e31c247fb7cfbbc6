package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalNext_Stepping(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, base.AddDate(0, 0, 1), IntervalDaily.Next(base))
	assert.Equal(t, base.AddDate(0, 0, 7), IntervalWeekly.Next(base))
	assert.Equal(t, base.AddDate(0, 0, 14), IntervalBiWeekly.Next(base))
	assert.Equal(t, time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC), IntervalMonthly.Next(base))
	assert.Equal(t, time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC), IntervalYearly.Next(base))
}

func TestIntervalNext_TruncatesToSeconds(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 30, 15, 987654321, time.UTC)

	next := IntervalWeekly.Next(base)
	assert.Zero(t, next.Nanosecond())
	assert.Equal(t, time.Date(2025, 3, 17, 9, 30, 15, 0, time.UTC), next)
}

func TestIntervalNext_MonotonicOverMonthEnds(t *testing.T) {
	// Stepping must always move forward, including across short months.
	cur := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 24; i++ {
		next := IntervalMonthly.Next(cur)
		assert.True(t, next.After(cur), "step %d: %v -> %v", i, cur, next)
		cur = next
	}
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, IntervalWeekly.Valid())
	assert.True(t, Interval("bi-weekly").Valid())
	assert.False(t, Interval("fortnightly").Valid())
	assert.False(t, Interval("").Valid())
}
