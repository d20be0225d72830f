package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
)

type classRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
	List(ctx context.Context) ([]models.Class, error)
	Create(ctx context.Context, class *models.Class) error
}

type enrollmentWriter interface {
	Upsert(ctx context.Context, studentID, classID int64) (*models.Enrollment, error)
	ListStudents(ctx context.Context, classID int64) ([]models.User, error)
}

// CreateClassRequest describes payload for creating a class.
type CreateClassRequest struct {
	Short              string `json:"short" validate:"required,max=20"`
	Description        string `json:"description" validate:"max=100"`
	TeacherID          int64  `json:"teacher_id" validate:"required"`
	SecondaryTeacherID *int64 `json:"secondary_teacher_id"`
}

// ClassService manages classes and student enrollment.
type ClassService struct {
	classes     classRepository
	enrollments enrollmentWriter
	users       userRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassService instantiates ClassService.
func NewClassService(classes classRepository, enrollments enrollmentWriter, users userRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, enrollments: enrollments, users: users, validator: validate, logger: logger}
}

// Create stores a new class after checking the primary teacher exists and
// actually is one.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	teacher, err := s.users.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if teacher.Role < models.LevelTeacher {
		return nil, appErrors.Clone(appErrors.ErrValidation, "primary teacher must hold the teacher role")
	}

	class := &models.Class{
		Short:              req.Short,
		Description:        req.Description,
		TeacherID:          req.TeacherID,
		SecondaryTeacherID: req.SecondaryTeacherID,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Get loads one class.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// List returns all classes.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Enroll puts a student into a class, moving them when already enrolled
// elsewhere (one current class per student).
func (s *ClassService) Enroll(ctx context.Context, studentID, classID int64) (*models.Enrollment, error) {
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.LevelStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only students can be enrolled")
	}

	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	enrollment, err := s.enrollments.Upsert(ctx, studentID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}
	return enrollment, nil
}

// Roster returns the students of a class.
func (s *ClassService) Roster(ctx context.Context, classID int64) ([]models.User, error) {
	students, err := s.enrollments.ListStudents(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return students, nil
}
