package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolops/presence-api/internal/models"
)

const (
	timetableColumns    = "id, class_id, room_id, period_id, teacher_id, subject, day_of_week, double_lesson, created_at, updated_at"
	substitutionColumns = "id, class_id, room_id, period_id, teacher_id, subject, day_of_week, double_lesson, date, created_at, updated_at"
)

// TimetableRepository provides persistence for periods, the recurring weekly
// timetable and date-specific substitutions.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListPeriods returns all periods ordered by start offset.
func (r *TimetableRepository) ListPeriods(ctx context.Context) ([]models.Period, error) {
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, `SELECT id, start_minute FROM periods ORDER BY start_minute ASC`); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// FindPeriod loads a single period by id.
func (r *TimetableRepository) FindPeriod(ctx context.Context, id int) (*models.Period, error) {
	var period models.Period
	if err := r.db.GetContext(ctx, &period, `SELECT id, start_minute FROM periods WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// CreatePeriod stores a period definition.
func (r *TimetableRepository) CreatePeriod(ctx context.Context, period *models.Period) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO periods (id, start_minute) VALUES ($1, $2)`, period.ID, period.StartMinute); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// ListRecurringByClass returns the recurring entries of a class for one day
// of the week.
func (r *TimetableRepository) ListRecurringByClass(ctx context.Context, classID int64, dayOfWeek int) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_entries WHERE class_id = $1 AND day_of_week = $2", timetableColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, classID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list recurring entries by class: %w", err)
	}
	return entries, nil
}

// ListRecurringByTeacher returns the recurring entries taught by a teacher
// for one day of the week.
func (r *TimetableRepository) ListRecurringByTeacher(ctx context.Context, teacherID int64, dayOfWeek int) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_entries WHERE teacher_id = $1 AND day_of_week = $2", timetableColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, teacherID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list recurring entries by teacher: %w", err)
	}
	return entries, nil
}

// ListSubstitutionsByClass returns the substitutions of a class for one
// exact date.
func (r *TimetableRepository) ListSubstitutionsByClass(ctx context.Context, classID int64, date time.Time) ([]models.Substitution, error) {
	query := fmt.Sprintf("SELECT %s FROM substitutions WHERE class_id = $1 AND date = $2", substitutionColumns)
	var subs []models.Substitution
	if err := r.db.SelectContext(ctx, &subs, query, classID, date); err != nil {
		return nil, fmt.Errorf("list substitutions by class: %w", err)
	}
	return subs, nil
}

// ListSubstitutionsByTeacher returns the substitutions taught by a teacher
// for one exact date.
func (r *TimetableRepository) ListSubstitutionsByTeacher(ctx context.Context, teacherID int64, date time.Time) ([]models.Substitution, error) {
	query := fmt.Sprintf("SELECT %s FROM substitutions WHERE teacher_id = $1 AND date = $2", substitutionColumns)
	var subs []models.Substitution
	if err := r.db.SelectContext(ctx, &subs, query, teacherID, date); err != nil {
		return nil, fmt.Errorf("list substitutions by teacher: %w", err)
	}
	return subs, nil
}

// CreateEntry stores a recurring timetable entry.
func (r *TimetableRepository) CreateEntry(ctx context.Context, entry *models.TimetableEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `INSERT INTO timetable_entries (id, class_id, room_id, period_id, teacher_id, subject, day_of_week, double_lesson, created_at, updated_at)
VALUES (:id, :class_id, :room_id, :period_id, :teacher_id, :subject, :day_of_week, :double_lesson, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create timetable entry: %w", err)
	}
	return nil
}

// CreateSubstitution stores a date-specific override.
func (r *TimetableRepository) CreateSubstitution(ctx context.Context, sub *models.Substitution) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	const query = `INSERT INTO substitutions (id, class_id, room_id, period_id, teacher_id, subject, day_of_week, double_lesson, date, created_at, updated_at)
VALUES (:id, :class_id, :room_id, :period_id, :teacher_id, :subject, :day_of_week, :double_lesson, :date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create substitution: %w", err)
	}
	return nil
}
