package handler

import (
	"context"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/account"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
)

// Narrow views of the collaborators, so handler tests run on fakes.

type JobStore interface {
	CreateJob(ctx context.Context, in sched.CreateJobInput) (*sched.Job, error)
	ListActiveJobs(ctx context.Context, owner string) ([]*sched.Job, error)
	Deactivate(ctx context.Context, key sched.JobKey) error
}

type Scheduler interface {
	Register(job *sched.Job)
	Deactivate(key sched.JobKey)
	Snapshot() sched.Status
}

type Accounts interface {
	FindByOwner(ctx context.Context, owner string) (*account.Account, error)
}

type Timers interface {
	Save(ctx context.Context, studentID, lessonID string, elapsed int64) error
	Get(ctx context.Context, studentID, lessonID string) (int64, error)
}
