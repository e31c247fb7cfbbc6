package sched

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store is the durable job record, the source of truth the scheduler and
// recovery rebuild their state from.
type Store struct {
	DB *gorm.DB

	// Overridable clock for tests.
	Now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

func (s *Store) CreateJob(ctx context.Context, in CreateJobInput) (*Job, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	start := in.Start
	if start.IsZero() {
		start = s.Now()
	}

	j := Job{
		Owner:         in.Owner,
		Kind:          in.Kind,
		Amount:        in.Amount,
		Name:          in.Name,
		Category:      in.Category,
		Interval:      in.Interval,
		NextExecution: in.Interval.Next(start),
		Active:        true,
	}
	if err := s.DB.WithContext(ctx).Create(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// ListActiveJobs returns active jobs ordered by due time. Empty owner
// means all owners (the recovery scan).
func (s *Store) ListActiveJobs(ctx context.Context, owner string) ([]*Job, error) {
	q := s.DB.WithContext(ctx).Where("active").Order("next_execution asc, id asc")
	if owner != "" {
		q = q.Where("owner = ?", owner)
	}
	var jobs []*Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) Deactivate(ctx context.Context, key JobKey) error {
	res := s.DB.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND owner = ? AND kind = ? AND active", key.ID, key.Owner, key.Kind).
		Updates(map[string]any{"active": false, "updated_at": s.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// MarkSkipped collapses a backlog beyond the catch-up cap: the job resumes
// at the first future occurrence and the skipped count is recorded instead
// of silently discarded.
func (s *Store) MarkSkipped(ctx context.Context, key JobKey, skipped int, resumed time.Time) error {
	res := s.DB.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND owner = ? AND kind = ? AND active", key.ID, key.Owner, key.Kind).
		Updates(map[string]any{
			"next_execution":      resumed,
			"skipped_occurrences": gorm.Expr("skipped_occurrences + ?", skipped),
			"updated_at":          s.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Advance moves a job's next_execution forward by exactly one interval step
// computed from the occurrence being applied, inside the caller's
// transaction. The WHERE clause is a compare-and-swap: if next_execution no
// longer equals the occurrence, another path already advanced this job and
// the call reports advanced=false without touching the row. That no-op is
// the primary defense against double application when a live timer and a
// recovery scan race on the same job.
func Advance(tx *gorm.DB, job *Job, occurrence time.Time) (time.Time, bool, error) {
	next := job.Interval.Next(occurrence)
	res := tx.Model(&Job{}).
		Where("id = ? AND next_execution = ?", job.ID, occurrence).
		Updates(map[string]any{"next_execution": next, "updated_at": time.Now()})
	if res.Error != nil {
		return time.Time{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return time.Time{}, false, nil
	}
	return next, true, nil
}
