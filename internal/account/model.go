package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a student's balance-bearing account. The balance is only
// ever mutated by SQL increments, never read-modify-write, so concurrent
// jobs for the same owner cannot lose updates.
type Account struct {
	ID        uint64          `gorm:"primaryKey"`
	Owner     string          `gorm:"uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"not null;default:now()"`
}
