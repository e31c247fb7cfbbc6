package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/account"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/events"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
)

var ErrAccountNotFound = errors.New("account not found for job owner")

// Applier lands one occurrence of a job on the owner's account: balance
// increment, ledger record and job advance committed as a single
// transaction. It satisfies sched.Applier for both the live timer and the
// recovery paths.
type Applier struct {
	DB     *gorm.DB
	Events events.Emitter
	Log    *logrus.Logger

	// Overridable clock for tests.
	Now func() time.Time
}

func NewApplier(db *gorm.DB, emitter events.Emitter, log *logrus.Logger) *Applier {
	return &Applier{DB: db, Events: emitter, Log: log, Now: time.Now}
}

func (a *Applier) Apply(ctx context.Context, job *sched.Job, occurrence time.Time) (*sched.Outcome, error) {
	key := job.Key().String()

	var duplicate bool
	next := job.Interval.Next(occurrence)

	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replay guard: a record for this occurrence means a previous
		// attempt already committed (e.g. a crash landed between apply
		// and the caller observing it). Absorb silently.
		var existing TransactionRecord
		err := tx.Where("job_key = ? AND occurrence_time = ?", key, occurrence).
			First(&existing).Error
		if err == nil {
			duplicate = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var acct account.Account
		if err := tx.Where("owner = ?", job.Owner).First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		// The advance CAS decides who owns this occurrence. Losing it
		// means a concurrent path applied it; write nothing.
		advancedTo, advanced, err := sched.Advance(tx, job, occurrence)
		if err != nil {
			return err
		}
		if !advanced {
			duplicate = true
			return nil
		}
		next = advancedTo

		res := tx.Model(&account.Account{}).
			Where("id = ?", acct.ID).
			Update("balance", gorm.Expr("balance + ?", job.Amount))
		if res.Error != nil {
			return res.Error
		}

		rec := TransactionRecord{
			Owner:          job.Owner,
			JobKey:         key,
			Kind:           job.Kind,
			Amount:         job.Amount,
			Name:           job.Name,
			OccurrenceTime: occurrence,
			AppliedAt:      a.Now(),
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		// Another path advanced this job; report the stored due time so
		// the caller re-arms correctly.
		var cur sched.Job
		if err := a.DB.WithContext(ctx).First(&cur, job.ID).Error; err == nil {
			next = cur.NextExecution
		}
		return &sched.Outcome{NextExecution: next, Duplicate: true}, nil
	}

	if a.Events != nil {
		a.Events.EmitTransaction(events.TransactionEvent{
			Owner:      job.Owner,
			Kind:       string(job.Kind),
			Amount:     job.Amount,
			Name:       job.Name,
			OccurredAt: occurrence,
			AppliedAt:  a.Now(),
		})
	}

	return &sched.Outcome{NextExecution: next}, nil
}
