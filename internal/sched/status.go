package sched

import (
	"sort"
	"time"
)

// JobStatus is one armed job as seen by the live registry.
type JobStatus struct {
	Key           string    `json:"key"`
	Owner         string    `json:"ownerId"`
	Kind          Kind      `json:"kind"`
	NextExecution time.Time `json:"nextExecution"`
	State         State     `json:"state"`
}

// Status is the operational snapshot served by /scheduler/status.
type Status struct {
	TotalScheduledJobs int         `json:"totalScheduledJobs"`
	Jobs               []JobStatus `json:"jobs"`
}

// Snapshot reads the live registry, not the store: it reflects exactly
// what is armed to fire, including entries mid-firing or in retry backoff.
func (c *Core) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobs := make([]JobStatus, 0, len(c.entries))
	for key, e := range c.entries {
		if e.deactivated {
			continue
		}
		jobs = append(jobs, JobStatus{
			Key:           key.String(),
			Owner:         key.Owner,
			Kind:          key.Kind,
			NextExecution: e.job.NextExecution,
			State:         e.state,
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Key < jobs[j].Key })

	return Status{TotalScheduledJobs: len(jobs), Jobs: jobs}
}
