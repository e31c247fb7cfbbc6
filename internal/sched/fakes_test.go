package sched

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type appliedRec struct {
	JobID      uint64
	Occurrence time.Time
	Amount     decimal.Decimal
}

// fakeApplier mirrors the ledger applier's semantics in memory: a
// compare-and-swap against the stored next execution decides whether an
// occurrence lands, and only a winning apply moves the balance.
type fakeApplier struct {
	mu      sync.Mutex
	next    map[uint64]time.Time
	records []appliedRec
	balance map[string]decimal.Decimal

	failOwners map[string]error
	applyDelay time.Duration
	started    chan struct{}
}

func newFakeApplier() *fakeApplier {
	return &fakeApplier{
		next:       map[uint64]time.Time{},
		balance:    map[string]decimal.Decimal{},
		failOwners: map[string]error{},
	}
}

func (f *fakeApplier) Apply(ctx context.Context, job *Job, occurrence time.Time) (*Outcome, error) {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.applyDelay > 0 {
		select {
		case <-time.After(f.applyDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failOwners[job.Owner]; ok {
		return nil, err
	}

	cur, ok := f.next[job.ID]
	if !ok {
		cur = job.NextExecution
	}
	if !cur.Equal(occurrence) {
		return &Outcome{NextExecution: cur, Duplicate: true}, nil
	}

	n := job.Interval.Next(occurrence)
	f.next[job.ID] = n
	f.balance[job.Owner] = f.balance[job.Owner].Add(job.Amount)
	f.records = append(f.records, appliedRec{JobID: job.ID, Occurrence: occurrence, Amount: job.Amount})
	return &Outcome{NextExecution: n}, nil
}

func (f *fakeApplier) recordsFor(jobID uint64) []appliedRec {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []appliedRec
	for _, r := range f.records {
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeApplier) balanceOf(owner string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance[owner]
}

type skippedMark struct {
	Skipped int
	Resumed time.Time
}

type fakeStore struct {
	mu      sync.Mutex
	jobs    []*Job
	skipped map[uint64]skippedMark
}

func newFakeStore(jobs ...*Job) *fakeStore {
	return &fakeStore{jobs: jobs, skipped: map[uint64]skippedMark{}}
}

func (s *fakeStore) ListActiveJobs(ctx context.Context, owner string) ([]*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Job
	for _, j := range s.jobs {
		if !j.Active {
			continue
		}
		if owner != "" && j.Owner != owner {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (s *fakeStore) MarkSkipped(ctx context.Context, key JobKey, skipped int, resumed time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.skipped[key.ID]
	m.Skipped += skipped
	m.Resumed = resumed
	s.skipped[key.ID] = m
	return nil
}

type fakeRegistrar struct {
	mu   sync.Mutex
	jobs []*Job
}

func (r *fakeRegistrar) Register(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

func (r *fakeRegistrar) registered() []*Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Job(nil), r.jobs...)
}
