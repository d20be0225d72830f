package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/schoolops/presence-api/internal/models"
)

// EnrollmentRepository maps students to their one current class.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByStudent returns the student's current enrollment.
func (r *EnrollmentRepository) FindByStudent(ctx context.Context, studentID int64) (*models.Enrollment, error) {
	const query = `SELECT student_id, class_id, updated_at FROM enrollments WHERE student_id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Upsert enrolls the student, moving them when already enrolled elsewhere.
func (r *EnrollmentRepository) Upsert(ctx context.Context, studentID, classID int64) (*models.Enrollment, error) {
	const query = `INSERT INTO enrollments (student_id, class_id, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (student_id)
DO UPDATE SET class_id = EXCLUDED.class_id, updated_at = EXCLUDED.updated_at
RETURNING student_id, class_id, updated_at`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, classID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListStudents returns the roster of a class.
func (r *EnrollmentRepository) ListStudents(ctx context.Context, classID int64) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u
JOIN enrollments e ON e.student_id = u.id
WHERE e.class_id = $1 ORDER BY u.last_name ASC, u.first_name ASC`, prefixedUserColumns("u"))
	var students []models.User
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return students, nil
}

func prefixedUserColumns(alias string) string {
	return fmt.Sprintf("%[1]s.id, %[1]s.first_name, %[1]s.middle_name, %[1]s.last_name, %[1]s.short_code, %[1]s.role, %[1]s.password_hash, %[1]s.created_at, %[1]s.updated_at", alias)
}
