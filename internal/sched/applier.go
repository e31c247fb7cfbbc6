package sched

import (
	"context"
	"time"
)

// Outcome reports what one applied occurrence did to a job.
type Outcome struct {
	// NextExecution is the job's due time after this occurrence. When the
	// apply was a duplicate it is whatever the store already holds.
	NextExecution time.Time

	// Duplicate is set when the occurrence had already been applied by
	// another path; no financial effect happened on this call.
	Duplicate bool
}

// Applier applies one due occurrence of a job: balance delta, history
// entry and the job advance, atomically and exactly once per occurrence.
// Both the live timer path and the recovery scan go through the same
// Applier so the same idempotency guard covers them.
type Applier interface {
	Apply(ctx context.Context, job *Job, occurrence time.Time) (*Outcome, error)
}
