package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolops/presence-api/internal/models"
)

const presenceColumns = "id, student_id, date, period_id, present_from, present_until, room_id, created_at, updated_at"

// PresenceRepository stores presence windows keyed by (student, date, period).
type PresenceRepository struct {
	db *sqlx.DB
}

// NewPresenceRepository creates a new presence repository.
func NewPresenceRepository(db *sqlx.DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

// Find loads the unique record for (student, date, period).
func (r *PresenceRepository) Find(ctx context.Context, studentID int64, date time.Time, periodID int) (*models.PresenceRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM presence_records WHERE student_id = $1 AND date = $2 AND period_id = $3", presenceColumns)
	var record models.PresenceRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, date, periodID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert inserts the record or, when one already exists for the key,
// rewrites only the window bounds. The room id is fixed at creation and a
// later call never moves it.
func (r *PresenceRepository) Upsert(ctx context.Context, record *models.PresenceRecord) (*models.PresenceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO presence_records (id, student_id, date, period_id, present_from, present_until, room_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, date, period_id)
DO UPDATE SET present_from = EXCLUDED.present_from, present_until = EXCLUDED.present_until, updated_at = EXCLUDED.updated_at
RETURNING %s`, presenceColumns)
	var stored models.PresenceRecord
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.StudentID, record.Date, record.PeriodID, record.PresentFrom, record.PresentUntil, record.RoomID, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert presence record: %w", err)
	}
	return &stored, nil
}

// ListByClass returns the presence records of a class roster for one date
// and period.
func (r *PresenceRepository) ListByClass(ctx context.Context, classID int64, date time.Time, periodID int) ([]models.PresenceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM presence_records p
JOIN enrollments e ON e.student_id = p.student_id
WHERE e.class_id = $1 AND p.date = $2 AND p.period_id = $3`, prefixedPresenceColumns("p"))
	var records []models.PresenceRecord
	if err := r.db.SelectContext(ctx, &records, query, classID, date, periodID); err != nil {
		return nil, fmt.Errorf("list class presence: %w", err)
	}
	return records, nil
}

// ListByClassDate returns every presence record of a class roster for one
// date across all periods.
func (r *PresenceRepository) ListByClassDate(ctx context.Context, classID int64, date time.Time) ([]models.PresenceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM presence_records p
JOIN enrollments e ON e.student_id = p.student_id
WHERE e.class_id = $1 AND p.date = $2 ORDER BY p.period_id ASC`, prefixedPresenceColumns("p"))
	var records []models.PresenceRecord
	if err := r.db.SelectContext(ctx, &records, query, classID, date); err != nil {
		return nil, fmt.Errorf("list class presence by date: %w", err)
	}
	return records, nil
}

func prefixedPresenceColumns(alias string) string {
	return fmt.Sprintf("%[1]s.id, %[1]s.student_id, %[1]s.date, %[1]s.period_id, %[1]s.present_from, %[1]s.present_until, %[1]s.room_id, %[1]s.created_at, %[1]s.updated_at", alias)
}
