package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/account"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/ledger"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/lesson"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&account.Account{},
		&sched.Job{},
		&ledger.TransactionRecord{},
		&lesson.Timer{},
	); err != nil {
		return err
	}

	// Idempotent-replay guard: one record per (job, occurrence), enforced
	// by the database regardless of what the process believes.
	if err := gdb.Exec(`
create unique index if not exists uq_ledger_job_occurrence
on transaction_records(job_key, occurrence_time);
`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_jobs_due on jobs(active, next_execution);`,
		`create index if not exists idx_jobs_owner_active on jobs(owner, active);`,
		`create index if not exists idx_ledger_owner_applied on transaction_records(owner, applied_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
