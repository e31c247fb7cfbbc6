package lesson

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTimerNotFound = errors.New("lesson timer not found")

// Timer is a lesson-engine collaborator record: accumulated time a
// student has spent in a lesson. Opaque to the scheduler.
type Timer struct {
	ID          uint64    `gorm:"primaryKey"`
	StudentID   string    `gorm:"not null;uniqueIndex:uq_lesson_timers,priority:1"`
	LessonID    string    `gorm:"not null;uniqueIndex:uq_lesson_timers,priority:2"`
	ElapsedTime int64     `gorm:"not null;default:0"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
}

type Store struct {
	DB *gorm.DB
}

func (s *Store) Save(ctx context.Context, studentID, lessonID string, elapsed int64) error {
	t := Timer{StudentID: studentID, LessonID: lessonID, ElapsedTime: elapsed}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]any{"elapsed_time": elapsed, "updated_at": time.Now()}),
	}).Create(&t).Error
}

func (s *Store) Get(ctx context.Context, studentID, lessonID string) (int64, error) {
	var t Timer
	err := s.DB.WithContext(ctx).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTimerNotFound
		}
		return 0, err
	}
	return t.ElapsedTime, nil
}
