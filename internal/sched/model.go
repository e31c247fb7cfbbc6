package sched

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidJob = errors.New("invalid job")
var ErrJobNotFound = errors.New("job not found")

type Kind string

const (
	KindBill    Kind = "bill"
	KindPayment Kind = "payment"
)

func (k Kind) Valid() bool {
	return k == KindBill || k == KindPayment
}

// JobKey identifies a recurring job. The string form "<owner>-<kind>-<id>"
// is for display only; the fields are always carried separately so an owner
// name containing '-' can never corrupt the key.
type JobKey struct {
	Owner string
	Kind  Kind
	ID    uint64
}

func (k JobKey) String() string {
	return fmt.Sprintf("%s-%s-%d", k.Owner, k.Kind, k.ID)
}

// Job is a recurring bill or payment owned by a student account.
// NextExecution only moves forward, one interval step per applied
// occurrence (see Advance).
type Job struct {
	ID       uint64          `gorm:"primaryKey"`
	Owner    string          `gorm:"index;not null"`
	Kind     Kind            `gorm:"type:text;not null"`
	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Name     string          `gorm:"type:text;not null"`
	Category string          `gorm:"type:text;not null;default:''"`
	Interval Interval        `gorm:"type:text;not null"`

	NextExecution time.Time `gorm:"index;not null"`
	Active        bool      `gorm:"index;not null;default:true"`

	// Occurrences collapsed by the recovery catch-up cap, kept for audit.
	SkippedOccurrences int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (j *Job) Key() JobKey {
	return JobKey{Owner: j.Owner, Kind: j.Kind, ID: j.ID}
}

// CreateJobInput is the validated input for a new recurring job.
// Start zero means "from now"; the first occurrence is one interval later.
type CreateJobInput struct {
	Owner    string
	Kind     Kind
	Amount   decimal.Decimal
	Interval Interval
	Name     string
	Category string
	Start    time.Time
}

func (in CreateJobInput) Validate() error {
	if strings.TrimSpace(in.Owner) == "" {
		return fmt.Errorf("%w: owner required", ErrInvalidJob)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, in.Kind)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidJob)
	}
	if !in.Interval.Valid() {
		return fmt.Errorf("%w: unknown interval %q", ErrInvalidJob, in.Interval)
	}
	if in.Amount.IsZero() {
		return fmt.Errorf("%w: amount must be non-zero", ErrInvalidJob)
	}
	// Bills debit, payments credit. Enforced rather than assumed.
	if in.Kind == KindBill && in.Amount.IsPositive() {
		return fmt.Errorf("%w: bill amount must be negative", ErrInvalidJob)
	}
	if in.Kind == KindPayment && in.Amount.IsNegative() {
		return fmt.Errorf("%w: payment amount must be positive", ErrInvalidJob)
	}
	return nil
}
