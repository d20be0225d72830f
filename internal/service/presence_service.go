package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
	"github.com/schoolops/presence-api/pkg/export"
	"github.com/schoolops/presence-api/pkg/timeutil"
)

type presenceRepository interface {
	Find(ctx context.Context, studentID int64, date time.Time, periodID int) (*models.PresenceRecord, error)
	Upsert(ctx context.Context, record *models.PresenceRecord) (*models.PresenceRecord, error)
	ListByClass(ctx context.Context, classID int64, date time.Time, periodID int) ([]models.PresenceRecord, error)
	ListByClassDate(ctx context.Context, classID int64, date time.Time) ([]models.PresenceRecord, error)
}

type enrollmentRepository interface {
	FindByStudent(ctx context.Context, studentID int64) (*models.Enrollment, error)
	ListStudents(ctx context.Context, classID int64) ([]models.User, error)
}

type currentSubjectLocator interface {
	CurrentSubject(ctx context.Context, classID int64, now time.Time) (*models.ResolvedEntry, error)
	CurrentTeacherEntry(ctx context.Context, teacherID int64, now time.Time) (*models.ResolvedEntry, error)
	ResolveClassSchedule(ctx context.Context, classID int64, date time.Time) ([]models.ResolvedEntry, error)
}

// Notifier receives presence-change events for the teacher teaching the
// affected class right now.
type Notifier interface {
	Notify(teacherID int64, event models.StudentPresence)
}

// PresenceService is the presence ledger: it records and reads student
// presence windows per (student, date, period).
type PresenceService struct {
	presence    presenceRepository
	enrollments enrollmentRepository
	schedule    currentSubjectLocator
	notifier    Notifier
	logger      *zap.Logger
}

// NewPresenceService instantiates PresenceService. The notifier may be nil
// when no live channel is attached.
func NewPresenceService(presence presenceRepository, enrollments enrollmentRepository, schedule currentSubjectLocator, notifier Notifier, logger *zap.Logger) *PresenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresenceService{
		presence:    presence,
		enrollments: enrollments,
		schedule:    schedule,
		notifier:    notifier,
		logger:      logger,
	}
}

// SetPresence applies a presence action for the student at the given time.
// The active period is resolved from the student's class schedule; the
// record for (student, today, period) is created or its window adjusted.
func (s *PresenceService) SetPresence(ctx context.Context, studentID int64, action models.PresenceAction, roomID int64, now time.Time) (*models.PresenceRecord, error) {
	if !action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown presence action")
	}

	enrollment, err := s.enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotEnrolled
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	entry, err := s.schedule.CurrentSubject(ctx, enrollment.ClassID, now)
	if err != nil {
		return nil, err
	}

	date := timeutil.DateOf(now)
	minute := timeutil.MinuteOfDay(now)

	record := &models.PresenceRecord{
		StudentID: studentID,
		Date:      date,
		PeriodID:  entry.PeriodID,
		RoomID:    roomID,
	}

	existing, err := s.presence.Find(ctx, studentID, date, entry.PeriodID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load presence record")
	}
	if existing != nil {
		record.PresentFrom = existing.PresentFrom
		record.PresentUntil = existing.PresentUntil
	}

	switch action {
	case models.ActionSetPresentFrom:
		record.PresentFrom = minute
		record.PresentUntil = entry.EndMinute
	case models.ActionSetPresentUntil:
		if existing == nil {
			record.PresentFrom = minute
		}
		record.PresentUntil = minute
	case models.ActionSetAbsent:
		// Absence is a window that has already ended.
		if existing == nil {
			record.PresentFrom = minute
		}
		record.PresentUntil = minute
	}

	stored, err := s.presence.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store presence record")
	}

	s.push(entry.TeacherID, stored)
	return stored, nil
}

// StudentSchedule resolves the schedule of the caller's class for a date.
func (s *PresenceService) StudentSchedule(ctx context.Context, studentID int64, date time.Time) ([]models.ResolvedEntry, error) {
	enrollment, err := s.enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotEnrolled
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return s.schedule.ResolveClassSchedule(ctx, enrollment.ClassID, date)
}

// StudentCurrentSubject resolves what the caller's class has right now.
func (s *PresenceService) StudentCurrentSubject(ctx context.Context, studentID int64, now time.Time) (*models.ResolvedEntry, error) {
	enrollment, err := s.enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotEnrolled
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return s.schedule.CurrentSubject(ctx, enrollment.ClassID, now)
}

// IsPresent reports whether the student is present right now: a record must
// exist for the active period and its window must not have elapsed.
func (s *PresenceService) IsPresent(ctx context.Context, studentID int64, now time.Time) (*models.PresenceStatus, error) {
	enrollment, err := s.enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotEnrolled
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	entry, err := s.schedule.CurrentSubject(ctx, enrollment.ClassID, now)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNoActivePeriod) {
			return &models.PresenceStatus{Present: false}, nil
		}
		return nil, err
	}

	record, err := s.presence.Find(ctx, studentID, timeutil.DateOf(now), entry.PeriodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.PresenceStatus{Present: false}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load presence record")
	}

	return &models.PresenceStatus{
		Present: record.ActiveAt(timeutil.MinuteOfDay(now)),
		Record:  record,
	}, nil
}

// ClassSnapshot returns the presence state of every student in the class
// for its currently active period. One element per roster student; absent
// students carry nil bounds.
func (s *PresenceService) ClassSnapshot(ctx context.Context, classID int64, now time.Time) ([]models.StudentPresence, error) {
	entry, err := s.schedule.CurrentSubject(ctx, classID, now)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, classID, entry.PeriodID, now)
}

// TeacherSnapshot locates the class the teacher is teaching right now and
// returns its presence snapshot. Used for the catch-up push when a teacher
// dashboard connects.
func (s *PresenceService) TeacherSnapshot(ctx context.Context, teacherID int64, now time.Time) ([]models.StudentPresence, error) {
	entry, err := s.schedule.CurrentTeacherEntry(ctx, teacherID, now)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, entry.ClassID, entry.PeriodID, now)
}

func (s *PresenceService) snapshot(ctx context.Context, classID int64, periodID int, now time.Time) ([]models.StudentPresence, error) {
	date := timeutil.DateOf(now)

	students, err := s.enrollments.ListStudents(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	records, err := s.presence.ListByClass(ctx, classID, date, periodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class presence")
	}

	byStudent := make(map[int64]models.PresenceRecord, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
	}

	result := make([]models.StudentPresence, 0, len(students))
	for _, student := range students {
		sp := models.StudentPresence{StudentID: student.ID, Date: date}
		if r, ok := byStudent[student.ID]; ok {
			from, until := r.PresentFrom, r.PresentUntil
			sp.PresentFrom = &from
			sp.PresentUntil = &until
		}
		result = append(result, sp)
	}
	return result, nil
}

// DailyReport builds a per-student export of the class's presence windows
// for one date across all scheduled periods.
func (s *PresenceService) DailyReport(ctx context.Context, classID int64, date time.Time) (export.Dataset, error) {
	date = timeutil.DateOf(date)

	schedule, err := s.schedule.ResolveClassSchedule(ctx, classID, date)
	if err != nil {
		return export.Dataset{}, err
	}
	students, err := s.enrollments.ListStudents(ctx, classID)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	records, err := s.presence.ListByClassDate(ctx, classID, date)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class presence")
	}

	type key struct {
		student int64
		period  int
	}
	byKey := make(map[key]models.PresenceRecord, len(records))
	for _, r := range records {
		byKey[key{r.StudentID, r.PeriodID}] = r
	}

	dataset := export.Dataset{Headers: []string{"Student", "Period", "Subject", "Present from", "Present until"}}
	for _, student := range students {
		name := student.FirstName + " " + student.LastName
		for _, entry := range schedule {
			row := []string{name, timeutil.FormatMinute(entry.StartMinute), entry.Subject, "", ""}
			if r, ok := byKey[key{student.ID, entry.PeriodID}]; ok {
				row[3] = timeutil.FormatMinute(r.PresentFrom)
				row[4] = timeutil.FormatMinute(r.PresentUntil)
			}
			dataset.Rows = append(dataset.Rows, row)
		}
	}
	return dataset, nil
}

func (s *PresenceService) push(teacherID int64, record *models.PresenceRecord) {
	if s.notifier == nil {
		return
	}
	from, until := record.PresentFrom, record.PresentUntil
	s.notifier.Notify(teacherID, models.StudentPresence{
		StudentID:    record.StudentID,
		PresentFrom:  &from,
		PresentUntil: &until,
		Date:         record.Date,
	})
}
