package sched

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// JobLister is the slice of the store the recovery scan needs.
type JobLister interface {
	ListActiveJobs(ctx context.Context, owner string) ([]*Job, error)
	MarkSkipped(ctx context.Context, key JobKey, skipped int, resumed time.Time) error
}

// Registrar arms recovered jobs; satisfied by *Core.
type Registrar interface {
	Register(job *Job)
}

// Recovery drives catch-up for jobs whose due time passed while no timer
// could fire: at boot, and on a periodic sweep that also revives degraded
// jobs whose accounts reappeared. Occurrences go through the same Applier
// as live firings, so the same advance guard applies whether a job is late
// by one interval or one hundred.
type Recovery struct {
	Store    JobLister
	Applier  Applier
	Registry Registrar
	Log      *logrus.Logger

	// CatchUpMax bounds occurrences backfilled per job per pass; the
	// remaining backlog collapses to the first future occurrence.
	CatchUpMax int

	// Overridable clock for tests.
	Now func() time.Time
}

// Run performs one full scan: every active job is caught up if overdue
// and registered with the live scheduler. A failure on one job never
// aborts the others.
func (r *Recovery) Run(ctx context.Context) error {
	jobs, err := r.Store.ListActiveJobs(ctx, "")
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := r.recover(ctx, job); err != nil {
			r.Log.WithError(err).WithField("job", job.Key().String()).
				Warn("recovery: job left for next pass")
			continue
		}
		r.Registry.Register(job)
	}
	return nil
}

// Sweep reruns the scan on a fixed cadence until ctx is cancelled.
func (r *Recovery) Sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Run(ctx); err != nil {
				r.Log.WithError(err).Error("recovery: sweep failed")
			}
		}
	}
}

// recover applies missed occurrences in chronological order, each one
// advancing the stored state before the next is attempted. Occurrence N+1
// is never applied before occurrence N has committed.
func (r *Recovery) recover(ctx context.Context, job *Job) error {
	now := r.now()

	applied := 0
	for !job.NextExecution.After(now) && applied < r.CatchUpMax {
		out, err := r.Applier.Apply(ctx, job, job.NextExecution)
		if err != nil {
			return err
		}
		job.NextExecution = out.NextExecution
		applied++
	}

	if job.NextExecution.After(now) {
		return nil
	}

	// Backlog beyond the cap: resume at the first future occurrence and
	// record what was skipped.
	next := job.NextExecution
	skipped := 0
	for !next.After(now) {
		next = job.Interval.Next(next)
		skipped++
	}
	if err := r.Store.MarkSkipped(ctx, job.Key(), skipped, next); err != nil {
		return err
	}
	job.NextExecution = next
	job.SkippedOccurrences += skipped

	r.Log.WithFields(logrus.Fields{
		"job":     job.Key().String(),
		"skipped": skipped,
		"resumed": next,
	}).Warn("recovery: backlog collapsed past catch-up cap")
	return nil
}

func (r *Recovery) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
