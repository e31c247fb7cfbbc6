package ledger

import (
	"time"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
	"github.com/shopspring/decimal"
)

// TransactionRecord is one applied occurrence of a recurring job.
// OccurrenceTime is the due time the record satisfies, not the wall-clock
// apply time; (JobKey, OccurrenceTime) is unique in the database and is
// the durable replay guard.
type TransactionRecord struct {
	ID             uint64          `gorm:"primaryKey"`
	Owner          string          `gorm:"index;not null"`
	JobKey         string          `gorm:"not null"`
	Kind           sched.Kind      `gorm:"type:text;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Name           string          `gorm:"type:text;not null;default:''"`
	OccurrenceTime time.Time       `gorm:"not null"`
	AppliedAt      time.Time       `gorm:"not null;default:now()"`
}
