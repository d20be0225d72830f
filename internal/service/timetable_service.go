package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
	"github.com/schoolops/presence-api/pkg/timeutil"
)

type timetableWriter interface {
	timetableRepository
	CreateEntry(ctx context.Context, entry *models.TimetableEntry) error
	CreateSubstitution(ctx context.Context, sub *models.Substitution) error
	CreatePeriod(ctx context.Context, period *models.Period) error
}

// CreateTimetableEntryRequest describes payload for a recurring slot.
type CreateTimetableEntryRequest struct {
	ClassID      int64  `json:"class_id" validate:"required"`
	RoomID       int64  `json:"room_id" validate:"required"`
	PeriodID     int    `json:"period_id" validate:"required"`
	TeacherID    int64  `json:"teacher_id" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	DayOfWeek    int    `json:"day_of_week" validate:"min=0,max=6"`
	DoubleLesson bool   `json:"double_lesson"`
}

// CreateSubstitutionRequest describes payload for a date-specific override.
type CreateSubstitutionRequest struct {
	CreateTimetableEntryRequest
	Date string `json:"date" validate:"required"`
}

// CreatePeriodRequest defines a daily time slot.
type CreatePeriodRequest struct {
	ID          int `json:"id" validate:"required"`
	StartMinute int `json:"start_minute" validate:"min=0,max=1439"`
}

// TimetableService manages the recurring timetable, substitutions and
// period definitions.
type TimetableService struct {
	repo      timetableWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(repo timetableWriter, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger}
}

// CreateEntry stores a recurring timetable slot.
func (s *TimetableService) CreateEntry(ctx context.Context, req CreateTimetableEntryRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if err := s.checkPeriod(ctx, req.PeriodID); err != nil {
		return nil, err
	}

	entry := &models.TimetableEntry{
		ClassID:      req.ClassID,
		RoomID:       req.RoomID,
		PeriodID:     req.PeriodID,
		TeacherID:    req.TeacherID,
		Subject:      req.Subject,
		DayOfWeek:    req.DayOfWeek,
		DoubleLesson: req.DoubleLesson,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable entry")
	}
	return entry, nil
}

// CreateSubstitution stores a date-specific override. The day of week is
// derived from the date, not trusted from the payload.
func (s *TimetableService) CreateSubstitution(ctx context.Context, req CreateSubstitutionRequest) (*models.Substitution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid substitution payload")
	}
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}
	if err := s.checkPeriod(ctx, req.PeriodID); err != nil {
		return nil, err
	}

	sub := &models.Substitution{
		ClassID:      req.ClassID,
		RoomID:       req.RoomID,
		PeriodID:     req.PeriodID,
		TeacherID:    req.TeacherID,
		Subject:      req.Subject,
		DayOfWeek:    int(date.Weekday()),
		DoubleLesson: req.DoubleLesson,
		Date:         date,
	}
	if err := s.repo.CreateSubstitution(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create substitution")
	}
	return sub, nil
}

// CreatePeriod defines a daily time slot.
func (s *TimetableService) CreatePeriod(ctx context.Context, req CreatePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}

	period := &models.Period{ID: req.ID, StartMinute: req.StartMinute}
	if err := s.repo.CreatePeriod(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period")
	}
	return period, nil
}

// ListPeriods returns all period definitions.
func (s *TimetableService) ListPeriods(ctx context.Context) ([]models.Period, error) {
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	return periods, nil
}

func (s *TimetableService) checkPeriod(ctx context.Context, periodID int) error {
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	for _, p := range periods {
		if p.ID == periodID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "period is not defined")
}
