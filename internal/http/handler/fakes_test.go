package handler

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/account"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/lesson"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
)

type fakeJobs struct {
	nextID uint64
	jobs   []*sched.Job
}

func (f *fakeJobs) CreateJob(ctx context.Context, in sched.CreateJobInput) (*sched.Job, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	start := in.Start
	if start.IsZero() {
		start = time.Now()
	}
	f.nextID++
	j := &sched.Job{
		ID:            f.nextID,
		Owner:         in.Owner,
		Kind:          in.Kind,
		Amount:        in.Amount,
		Name:          in.Name,
		Category:      in.Category,
		Interval:      in.Interval,
		NextExecution: in.Interval.Next(start),
		Active:        true,
	}
	f.jobs = append(f.jobs, j)
	return j, nil
}

func (f *fakeJobs) ListActiveJobs(ctx context.Context, owner string) ([]*sched.Job, error) {
	var out []*sched.Job
	for _, j := range f.jobs {
		if j.Active && (owner == "" || j.Owner == owner) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJobs) Deactivate(ctx context.Context, key sched.JobKey) error {
	for _, j := range f.jobs {
		if j.Key() == key && j.Active {
			j.Active = false
			return nil
		}
	}
	return sched.ErrJobNotFound
}

type fakeScheduler struct {
	snapshot    sched.Status
	registered  []*sched.Job
	deactivated []sched.JobKey
}

func (f *fakeScheduler) Register(job *sched.Job) {
	f.registered = append(f.registered, job)
}

func (f *fakeScheduler) Deactivate(key sched.JobKey) {
	f.deactivated = append(f.deactivated, key)
}

func (f *fakeScheduler) Snapshot() sched.Status { return f.snapshot }

type fakeAccounts struct {
	owners map[string]*account.Account
}

func (f *fakeAccounts) FindByOwner(ctx context.Context, owner string) (*account.Account, error) {
	if a, ok := f.owners[owner]; ok {
		return a, nil
	}
	return nil, account.ErrNotFound
}

func accountsWith(owners ...string) *fakeAccounts {
	m := map[string]*account.Account{}
	for i, o := range owners {
		m[o] = &account.Account{ID: uint64(i + 1), Owner: o, Balance: decimal.Zero}
	}
	return &fakeAccounts{owners: m}
}

type fakeTimers struct {
	saved map[string]int64
}

func timerKey(studentID, lessonID string) string { return studentID + "|" + lessonID }

func (f *fakeTimers) Save(ctx context.Context, studentID, lessonID string, elapsed int64) error {
	if f.saved == nil {
		f.saved = map[string]int64{}
	}
	f.saved[timerKey(studentID, lessonID)] = elapsed
	return nil
}

func (f *fakeTimers) Get(ctx context.Context, studentID, lessonID string) (int64, error) {
	if v, ok := f.saved[timerKey(studentID, lessonID)]; ok {
		return v, nil
	}
	return 0, lesson.ErrTimerNotFound
}
