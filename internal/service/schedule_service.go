package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
	"github.com/schoolops/presence-api/pkg/timeutil"
)

type timetableRepository interface {
	ListPeriods(ctx context.Context) ([]models.Period, error)
	ListRecurringByClass(ctx context.Context, classID int64, dayOfWeek int) ([]models.TimetableEntry, error)
	ListRecurringByTeacher(ctx context.Context, teacherID int64, dayOfWeek int) ([]models.TimetableEntry, error)
	ListSubstitutionsByClass(ctx context.Context, classID int64, date time.Time) ([]models.Substitution, error)
	ListSubstitutionsByTeacher(ctx context.Context, teacherID int64, date time.Time) ([]models.Substitution, error)
}

// ScheduleService resolves effective schedules by merging the recurring
// weekly timetable with date-specific substitutions.
type ScheduleService struct {
	repo         timetableRepository
	periodLength int
	logger       *zap.Logger
}

// NewScheduleService instantiates ScheduleService. periodLength is the
// length of a single lesson in minutes.
func NewScheduleService(repo timetableRepository, periodLength int, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if periodLength <= 0 {
		periodLength = 45
	}
	return &ScheduleService{repo: repo, periodLength: periodLength, logger: logger}
}

// ResolveClassSchedule returns the effective schedule of a class for one
// date, ordered by start time. An unknown class resolves to an empty
// schedule; callers needing existence validation check the class separately.
func (s *ScheduleService) ResolveClassSchedule(ctx context.Context, classID int64, date time.Time) ([]models.ResolvedEntry, error) {
	date = timeutil.DateOf(date)
	day := int(date.Weekday())

	recurring, err := s.repo.ListRecurringByClass(ctx, classID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recurring timetable")
	}
	subs, err := s.repo.ListSubstitutionsByClass(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitutions")
	}

	return s.merge(ctx, recurring, subs)
}

// ResolveTeacherSchedule is the symmetric resolver keyed by teacher.
func (s *ScheduleService) ResolveTeacherSchedule(ctx context.Context, teacherID int64, date time.Time) ([]models.ResolvedEntry, error) {
	date = timeutil.DateOf(date)
	day := int(date.Weekday())

	recurring, err := s.repo.ListRecurringByTeacher(ctx, teacherID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recurring timetable")
	}
	subs, err := s.repo.ListSubstitutionsByTeacher(ctx, teacherID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitutions")
	}

	return s.merge(ctx, recurring, subs)
}

// CurrentSubject finds the single schedule entry of a class containing the
// given timestamp. No containing entry is the normal out-of-hours outcome;
// more than one is rejected as a data-integrity violation.
func (s *ScheduleService) CurrentSubject(ctx context.Context, classID int64, now time.Time) (*models.ResolvedEntry, error) {
	schedule, err := s.ResolveClassSchedule(ctx, classID, now)
	if err != nil {
		return nil, err
	}
	return pickCurrent(schedule, now)
}

// CurrentTeacherEntry finds what a teacher is teaching at the given
// timestamp, if anything.
func (s *ScheduleService) CurrentTeacherEntry(ctx context.Context, teacherID int64, now time.Time) (*models.ResolvedEntry, error) {
	schedule, err := s.ResolveTeacherSchedule(ctx, teacherID, now)
	if err != nil {
		return nil, err
	}
	return pickCurrent(schedule, now)
}

func pickCurrent(schedule []models.ResolvedEntry, now time.Time) (*models.ResolvedEntry, error) {
	minute := timeutil.MinuteOfDay(now)
	var found *models.ResolvedEntry
	for i := range schedule {
		if !schedule[i].Contains(minute) {
			continue
		}
		if found != nil {
			return nil, appErrors.Clone(appErrors.ErrScheduleConflict, "multiple schedule entries cover the current time")
		}
		found = &schedule[i]
	}
	if found == nil {
		return nil, appErrors.ErrNoActivePeriod
	}
	return found, nil
}

// merge applies substitutions over the recurring base: a substitution
// sharing a period id replaces the base entry, any other is appended.
func (s *ScheduleService) merge(ctx context.Context, recurring []models.TimetableEntry, subs []models.Substitution) ([]models.ResolvedEntry, error) {
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}
	starts := make(map[int]int, len(periods))
	for _, p := range periods {
		starts[p.ID] = p.StartMinute
	}

	byPeriod := make(map[int]models.ResolvedEntry, len(recurring)+len(subs))
	order := make([]int, 0, len(recurring)+len(subs))

	for _, entry := range recurring {
		resolved, ok := s.resolve(entry.ClassID, entry.RoomID, entry.PeriodID, entry.TeacherID, entry.Subject, entry.DoubleLesson, false, starts)
		if !ok {
			continue
		}
		if _, exists := byPeriod[entry.PeriodID]; !exists {
			order = append(order, entry.PeriodID)
		}
		byPeriod[entry.PeriodID] = resolved
	}

	for _, sub := range subs {
		resolved, ok := s.resolve(sub.ClassID, sub.RoomID, sub.PeriodID, sub.TeacherID, sub.Subject, sub.DoubleLesson, true, starts)
		if !ok {
			continue
		}
		if _, exists := byPeriod[sub.PeriodID]; !exists {
			order = append(order, sub.PeriodID)
		}
		byPeriod[sub.PeriodID] = resolved
	}

	result := make([]models.ResolvedEntry, 0, len(order))
	for _, periodID := range order {
		result = append(result, byPeriod[periodID])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartMinute < result[j].StartMinute
	})
	return result, nil
}

func (s *ScheduleService) resolve(classID, roomID int64, periodID int, teacherID int64, subject string, double, substituted bool, starts map[int]int) (models.ResolvedEntry, bool) {
	start, ok := starts[periodID]
	if !ok {
		s.logger.Warn("schedule entry references undefined period", zap.Int("period_id", periodID))
		return models.ResolvedEntry{}, false
	}
	length := s.periodLength
	if double {
		length *= 2
	}
	return models.ResolvedEntry{
		ClassID:      classID,
		RoomID:       roomID,
		PeriodID:     periodID,
		TeacherID:    teacherID,
		Subject:      subject,
		DoubleLesson: double,
		StartMinute:  start,
		EndMinute:    start + length,
		Substituted:  substituted,
	}, true
}
