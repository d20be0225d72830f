package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
)

type mockTimetableRepo struct {
	periods       []models.Period
	recurring     []models.TimetableEntry
	substitutions []models.Substitution
	periodsErr    error
}

func (m *mockTimetableRepo) ListPeriods(ctx context.Context) ([]models.Period, error) {
	return m.periods, m.periodsErr
}

func (m *mockTimetableRepo) ListRecurringByClass(ctx context.Context, classID int64, dayOfWeek int) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range m.recurring {
		if e.ClassID == classID && e.DayOfWeek == dayOfWeek {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockTimetableRepo) ListRecurringByTeacher(ctx context.Context, teacherID int64, dayOfWeek int) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range m.recurring {
		if e.TeacherID == teacherID && e.DayOfWeek == dayOfWeek {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockTimetableRepo) ListSubstitutionsByClass(ctx context.Context, classID int64, date time.Time) ([]models.Substitution, error) {
	var out []models.Substitution
	for _, s := range m.substitutions {
		if s.ClassID == classID && s.Date.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockTimetableRepo) ListSubstitutionsByTeacher(ctx context.Context, teacherID int64, date time.Time) ([]models.Substitution, error) {
	var out []models.Substitution
	for _, s := range m.substitutions {
		if s.TeacherID == teacherID && s.Date.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

// monday is a fixed reference date; time.Weekday() == 1.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func standardPeriods() []models.Period {
	return []models.Period{
		{ID: 1, StartMinute: 8 * 60},
		{ID: 2, StartMinute: 8*60 + 50},
		{ID: 3, StartMinute: 9*60 + 45},
		{ID: 4, StartMinute: 10*60 + 35},
	}
}

func TestResolveClassScheduleSortsByStart(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		recurring: []models.TimetableEntry{
			{ID: "b", ClassID: 7, RoomID: 2, PeriodID: 3, TeacherID: 21, Subject: "Physics", DayOfWeek: 1},
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	schedule, err := svc.ResolveClassSchedule(context.Background(), 7, monday)
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.Equal(t, "Math", schedule[0].Subject)
	assert.Equal(t, "Physics", schedule[1].Subject)
	assert.Equal(t, 8*60, schedule[0].StartMinute)
	assert.Equal(t, 8*60+45, schedule[0].EndMinute)
}

func TestResolveClassScheduleSubstitutionShadowsRecurring(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		recurring: []models.TimetableEntry{
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
			{ID: "b", ClassID: 7, RoomID: 1, PeriodID: 2, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
		},
		substitutions: []models.Substitution{
			{ID: "s", ClassID: 7, RoomID: 5, PeriodID: 1, TeacherID: 33, Subject: "Art", Date: monday},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	schedule, err := svc.ResolveClassSchedule(context.Background(), 7, monday)
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.Equal(t, "Art", schedule[0].Subject)
	assert.Equal(t, int64(33), schedule[0].TeacherID)
	assert.True(t, schedule[0].Substituted)
	assert.Equal(t, "Math", schedule[1].Subject)
	assert.False(t, schedule[1].Substituted)
}

func TestResolveClassScheduleSubstitutionIgnoredOnOtherDate(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		recurring: []models.TimetableEntry{
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
		},
		substitutions: []models.Substitution{
			{ID: "s", ClassID: 7, RoomID: 5, PeriodID: 1, TeacherID: 33, Subject: "Art", Date: monday.AddDate(0, 0, 7)},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	schedule, err := svc.ResolveClassSchedule(context.Background(), 7, monday)
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, "Math", schedule[0].Subject)
	assert.False(t, schedule[0].Substituted)
}

func TestResolveClassScheduleAdditiveSubstitution(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		recurring: []models.TimetableEntry{
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
		},
		substitutions: []models.Substitution{
			{ID: "s", ClassID: 7, RoomID: 5, PeriodID: 4, TeacherID: 33, Subject: "Sports", Date: monday},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	schedule, err := svc.ResolveClassSchedule(context.Background(), 7, monday)
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.Equal(t, "Math", schedule[0].Subject)
	assert.Equal(t, "Sports", schedule[1].Subject)
}

func TestResolveClassScheduleSkipsUndefinedPeriod(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		recurring: []models.TimetableEntry{
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
			{ID: "x", ClassID: 7, RoomID: 1, PeriodID: 99, TeacherID: 20, Subject: "Ghost", DayOfWeek: 1},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	schedule, err := svc.ResolveClassSchedule(context.Background(), 7, monday)
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, "Math", schedule[0].Subject)
}

func TestResolveClassScheduleDoubleLessonSpansTwoPeriods(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		recurring: []models.TimetableEntry{
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Chemistry", DayOfWeek: 1, DoubleLesson: true},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	schedule, err := svc.ResolveClassSchedule(context.Background(), 7, monday)
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, 8*60, schedule[0].StartMinute)
	assert.Equal(t, 8*60+90, schedule[0].EndMinute)
}

func TestCurrentSubjectPicksContainingEntry(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		recurring: []models.TimetableEntry{
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
			{ID: "b", ClassID: 7, RoomID: 1, PeriodID: 2, TeacherID: 21, Subject: "History", DayOfWeek: 1},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	now := monday.Add(8*time.Hour + 20*time.Minute)
	entry, err := svc.CurrentSubject(context.Background(), 7, now)
	require.NoError(t, err)
	assert.Equal(t, "Math", entry.Subject)
	assert.Equal(t, 1, entry.PeriodID)
}

func TestCurrentSubjectOutsideAnyPeriod(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		recurring: []models.TimetableEntry{
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	// 8:45 is exactly the end bound, the interval is half-open.
	now := monday.Add(8*time.Hour + 45*time.Minute)
	_, err := svc.CurrentSubject(context.Background(), 7, now)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoActivePeriod.Code, appErrors.FromError(err).Code)
}

func TestCurrentSubjectRejectsOverlap(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: []models.Period{
			{ID: 1, StartMinute: 8 * 60},
			{ID: 2, StartMinute: 8*60 + 30},
		},
		recurring: []models.TimetableEntry{
			{ID: "a", ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1},
			{ID: "b", ClassID: 7, RoomID: 2, PeriodID: 2, TeacherID: 21, Subject: "History", DayOfWeek: 1},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	now := monday.Add(8*time.Hour + 40*time.Minute)
	_, err := svc.CurrentSubject(context.Background(), 7, now)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErrors.FromError(err).Code)
}

func TestCurrentTeacherEntryFollowsSubstitution(t *testing.T) {
	repo := &mockTimetableRepo{
		periods: standardPeriods(),
		substitutions: []models.Substitution{
			{ID: "s", ClassID: 9, RoomID: 5, PeriodID: 1, TeacherID: 33, Subject: "Art", Date: monday},
		},
	}
	svc := NewScheduleService(repo, 45, zap.NewNop())

	now := monday.Add(8*time.Hour + 10*time.Minute)
	entry, err := svc.CurrentTeacherEntry(context.Background(), 33, now)
	require.NoError(t, err)
	assert.Equal(t, int64(9), entry.ClassID)
	assert.True(t, entry.Substituted)
}
