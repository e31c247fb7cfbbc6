package sched

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type State string

const (
	StateScheduled State = "scheduled"
	StateFiring    State = "firing"
	StateRetrying  State = "retrying"
	StateError     State = "error"
)

// idleWait bounds the sleep when no job is armed.
const idleWait = time.Hour

// maxBackoff caps the retry curve so a degraded job is retried at least
// this often until it exhausts its attempts.
const maxBackoff = 10 * time.Minute

type entry struct {
	job         *Job
	state       State
	dueAt       time.Time
	fails       int
	inFlight    bool
	deactivated bool
}

// CoreOptions tune the firing loop.
type CoreOptions struct {
	RetryMax     int
	RetryBackoff time.Duration
	ApplyTimeout time.Duration
	Concurrency  int
}

// Core is the in-memory timer registry. One loop goroutine sleeps until
// the earliest due entry and fans firings out to a bounded set of
// goroutines, one in flight per job key at most.
//
// Core is explicitly owned: construct it, Start it, Stop it. Nothing here
// is package-global.
type Core struct {
	applier Applier
	log     *logrus.Logger
	opts    CoreOptions

	mu      sync.Mutex
	entries map[JobKey]*entry

	wake chan struct{}
	sem  chan struct{}
	wg   sync.WaitGroup

	// Overridable clock for tests.
	now func() time.Time
}

func NewCore(applier Applier, log *logrus.Logger, opts CoreOptions) *Core {
	if opts.RetryMax <= 0 {
		opts.RetryMax = 5
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 30 * time.Second
	}
	if opts.ApplyTimeout <= 0 {
		opts.ApplyTimeout = 15 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 16
	}
	return &Core{
		applier: applier,
		log:     log,
		opts:    opts,
		entries: make(map[JobKey]*entry),
		wake:    make(chan struct{}, 1),
		sem:     make(chan struct{}, opts.Concurrency),
		now:     time.Now,
	}
}

// Start launches the scheduling loop. It returns immediately; the loop
// runs until ctx is cancelled.
func (c *Core) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
}

// Stop blocks until the loop and every in-flight firing have finished.
// In-flight applies are allowed to complete; financial correctness wins
// over shutdown promptness.
func (c *Core) Stop() {
	c.wg.Wait()
}

// Register arms a timer for the job. Registering an already-tracked job is
// a no-op unless its stored due time moved or the entry had degraded to
// the error state, in which case it is re-armed fresh. A past-due time
// fires on the next loop pass.
func (c *Core) Register(job *Job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := job.Key()
	if e, ok := c.entries[key]; ok {
		if e.deactivated {
			return
		}
		if e.inFlight {
			e.job = job
			return
		}
		if e.state == StateError || !e.job.NextExecution.Equal(job.NextExecution) {
			e.job = job
			e.dueAt = job.NextExecution
			e.state = StateScheduled
			e.fails = 0
			c.signal()
		}
		return
	}

	c.entries[key] = &entry{job: job, state: StateScheduled, dueAt: job.NextExecution}
	c.signal()
}

// Deactivate makes the job terminal. A pending timer is dropped; an
// in-flight apply finishes but nothing is re-armed afterwards.
func (c *Core) Deactivate(key JobKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.deactivated = true
	if !e.inFlight {
		delete(c.entries, key)
	}
	c.signal()
}

func (c *Core) run(ctx context.Context) {
	for {
		wait := c.untilNext()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.wake:
			timer.Stop()
		case <-timer.C:
		}
		c.fireDue(ctx)
	}
}

// untilNext computes the sleep until the earliest armed entry. A linear
// scan is plenty at classroom scale.
func (c *Core) untilNext() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	var earliest time.Time
	for _, e := range c.entries {
		if e.inFlight || e.deactivated || e.state == StateError {
			continue
		}
		if earliest.IsZero() || e.dueAt.Before(earliest) {
			earliest = e.dueAt
		}
	}
	if earliest.IsZero() {
		return idleWait
	}
	wait := earliest.Sub(c.now())
	if wait < 0 {
		return 0
	}
	return wait
}

func (c *Core) fireDue(ctx context.Context) {
	now := c.now()

	c.mu.Lock()
	var due []*entry
	for _, e := range c.entries {
		if e.inFlight || e.deactivated || e.state == StateError {
			continue
		}
		if !e.dueAt.After(now) {
			e.inFlight = true
			e.state = StateFiring
			due = append(due, e)
		}
	}
	c.mu.Unlock()

	for _, e := range due {
		c.wg.Add(1)
		go c.fire(ctx, e)
	}
}

func (c *Core) fire(ctx context.Context, e *entry) {
	defer c.wg.Done()

	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		c.release(e)
		return
	}

	c.mu.Lock()
	job := e.job
	occurrence := job.NextExecution
	c.mu.Unlock()

	// Detached from the loop context: an in-flight apply runs to
	// completion (bounded by the timeout) even during shutdown.
	applyCtx, cancel := context.WithTimeout(context.Background(), c.opts.ApplyTimeout)
	out, err := c.applier.Apply(applyCtx, job, occurrence)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	e.inFlight = false
	if e.deactivated {
		delete(c.entries, job.Key())
		return
	}

	if err != nil {
		e.fails++
		if e.fails >= c.opts.RetryMax {
			e.state = StateError
			c.log.WithError(err).WithFields(logrus.Fields{
				"job":   job.Key().String(),
				"fails": e.fails,
			}).Error("scheduler: job degraded after repeated failures")
			return
		}
		e.state = StateRetrying
		e.dueAt = c.now().Add(backoff(c.opts.RetryBackoff, e.fails))
		c.log.WithError(err).WithFields(logrus.Fields{
			"job":      job.Key().String(),
			"retry_at": e.dueAt,
		}).Warn("scheduler: apply failed, retrying")
		c.signal()
		return
	}

	e.job.NextExecution = out.NextExecution
	e.dueAt = out.NextExecution
	e.state = StateScheduled
	e.fails = 0
	if !out.Duplicate {
		c.log.WithFields(logrus.Fields{
			"job":  job.Key().String(),
			"next": out.NextExecution,
		}).Info("scheduler: occurrence applied")
	}
	c.signal()
}

func (c *Core) release(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.inFlight = false
	if e.deactivated {
		delete(c.entries, e.job.Key())
		return
	}
	e.state = StateScheduled
}

func (c *Core) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// backoff doubles per consecutive failure, capped.
func backoff(base time.Duration, fails int) time.Duration {
	d := base
	for i := 1; i < fails; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
