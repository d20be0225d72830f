package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
)

type mockPresenceRepo struct {
	records map[string]*models.PresenceRecord
}

func presenceKey(studentID int64, date time.Time, periodID int) string {
	return fmt.Sprintf("%d/%s/%d", studentID, date.Format("2006-01-02"), periodID)
}

func (m *mockPresenceRepo) Find(ctx context.Context, studentID int64, date time.Time, periodID int) (*models.PresenceRecord, error) {
	r, ok := m.records[presenceKey(studentID, date, periodID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *r
	return &found, nil
}

func (m *mockPresenceRepo) Upsert(ctx context.Context, record *models.PresenceRecord) (*models.PresenceRecord, error) {
	if m.records == nil {
		m.records = make(map[string]*models.PresenceRecord)
	}
	stored := *record
	if stored.ID == "" {
		stored.ID = "generated"
	}
	m.records[presenceKey(record.StudentID, record.Date, record.PeriodID)] = &stored
	return &stored, nil
}

func (m *mockPresenceRepo) ListByClass(ctx context.Context, classID int64, date time.Time, periodID int) ([]models.PresenceRecord, error) {
	var out []models.PresenceRecord
	for _, r := range m.records {
		if r.Date.Equal(date) && r.PeriodID == periodID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockPresenceRepo) ListByClassDate(ctx context.Context, classID int64, date time.Time) ([]models.PresenceRecord, error) {
	var out []models.PresenceRecord
	for _, r := range m.records {
		if r.Date.Equal(date) {
			out = append(out, *r)
		}
	}
	return out, nil
}

type mockEnrollmentRepo struct {
	enrollments map[int64]int64
	students    []models.User
}

func (m *mockEnrollmentRepo) FindByStudent(ctx context.Context, studentID int64) (*models.Enrollment, error) {
	classID, ok := m.enrollments[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Enrollment{StudentID: studentID, ClassID: classID}, nil
}

func (m *mockEnrollmentRepo) ListStudents(ctx context.Context, classID int64) ([]models.User, error) {
	return m.students, nil
}

type mockLocator struct {
	entry *models.ResolvedEntry
	err   error
}

func (m *mockLocator) CurrentSubject(ctx context.Context, classID int64, now time.Time) (*models.ResolvedEntry, error) {
	return m.entry, m.err
}

func (m *mockLocator) CurrentTeacherEntry(ctx context.Context, teacherID int64, now time.Time) (*models.ResolvedEntry, error) {
	return m.entry, m.err
}

func (m *mockLocator) ResolveClassSchedule(ctx context.Context, classID int64, date time.Time) ([]models.ResolvedEntry, error) {
	if m.entry == nil {
		return nil, nil
	}
	return []models.ResolvedEntry{*m.entry}, nil
}

type mockNotifier struct {
	events []models.StudentPresence
	to     []int64
}

func (m *mockNotifier) Notify(teacherID int64, event models.StudentPresence) {
	m.to = append(m.to, teacherID)
	m.events = append(m.events, event)
}

func mathAt0800() *models.ResolvedEntry {
	return &models.ResolvedEntry{
		ClassID:     7,
		RoomID:      3,
		PeriodID:    1,
		TeacherID:   20,
		Subject:     "Math",
		StartMinute: 8 * 60,
		EndMinute:   8*60 + 45,
	}
}

func TestSetPresenceCreatesWindowToPeriodEnd(t *testing.T) {
	presence := &mockPresenceRepo{}
	enrollments := &mockEnrollmentRepo{enrollments: map[int64]int64{101: 7}}
	notifier := &mockNotifier{}
	svc := NewPresenceService(presence, enrollments, &mockLocator{entry: mathAt0800()}, notifier, zap.NewNop())

	now := monday.Add(8*time.Hour + 5*time.Minute)
	record, err := svc.SetPresence(context.Background(), 101, models.ActionSetPresentFrom, 3, now)
	require.NoError(t, err)
	assert.Equal(t, 8*60+5, record.PresentFrom)
	assert.Equal(t, 8*60+45, record.PresentUntil)
	assert.Equal(t, int64(3), record.RoomID)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, int64(20), notifier.to[0])
	assert.Equal(t, int64(101), notifier.events[0].StudentID)
}

func TestSetPresenceSecondCallAdjustsWindow(t *testing.T) {
	presence := &mockPresenceRepo{}
	enrollments := &mockEnrollmentRepo{enrollments: map[int64]int64{101: 7}}
	svc := NewPresenceService(presence, enrollments, &mockLocator{entry: mathAt0800()}, nil, zap.NewNop())

	_, err := svc.SetPresence(context.Background(), 101, models.ActionSetPresentFrom, 3, monday.Add(8*time.Hour+5*time.Minute))
	require.NoError(t, err)

	record, err := svc.SetPresence(context.Background(), 101, models.ActionSetPresentUntil, 3, monday.Add(8*time.Hour+30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 8*60+5, record.PresentFrom)
	assert.Equal(t, 8*60+30, record.PresentUntil)
	assert.Len(t, presence.records, 1)
}

func TestSetPresenceAbsentWritesElapsedWindow(t *testing.T) {
	presence := &mockPresenceRepo{}
	enrollments := &mockEnrollmentRepo{enrollments: map[int64]int64{101: 7}}
	svc := NewPresenceService(presence, enrollments, &mockLocator{entry: mathAt0800()}, nil, zap.NewNop())

	now := monday.Add(8*time.Hour + 10*time.Minute)
	record, err := svc.SetPresence(context.Background(), 101, models.ActionSetAbsent, 3, now)
	require.NoError(t, err)
	assert.False(t, record.ActiveAt(8*60+10))

	status, err := svc.IsPresent(context.Background(), 101, now)
	require.NoError(t, err)
	assert.False(t, status.Present)
}

func TestSetPresenceRejectsUnknownAction(t *testing.T) {
	svc := NewPresenceService(&mockPresenceRepo{}, &mockEnrollmentRepo{}, &mockLocator{}, nil, zap.NewNop())

	_, err := svc.SetPresence(context.Background(), 101, models.PresenceAction("teleport"), 3, monday)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSetPresenceUnenrolledStudent(t *testing.T) {
	enrollments := &mockEnrollmentRepo{enrollments: map[int64]int64{}}
	svc := NewPresenceService(&mockPresenceRepo{}, enrollments, &mockLocator{entry: mathAt0800()}, nil, zap.NewNop())

	_, err := svc.SetPresence(context.Background(), 999, models.ActionSetPresentFrom, 3, monday)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotEnrolled.Code, appErrors.FromError(err).Code)
}

func TestIsPresentFalseOutsideLessonHours(t *testing.T) {
	enrollments := &mockEnrollmentRepo{enrollments: map[int64]int64{101: 7}}
	svc := NewPresenceService(&mockPresenceRepo{}, enrollments, &mockLocator{err: appErrors.ErrNoActivePeriod}, nil, zap.NewNop())

	status, err := svc.IsPresent(context.Background(), 101, monday.Add(6*time.Hour))
	require.NoError(t, err)
	assert.False(t, status.Present)
}

func TestIsPresentLapsesAtWindowEnd(t *testing.T) {
	presence := &mockPresenceRepo{}
	enrollments := &mockEnrollmentRepo{enrollments: map[int64]int64{101: 7}}
	svc := NewPresenceService(presence, enrollments, &mockLocator{entry: mathAt0800()}, nil, zap.NewNop())

	_, err := svc.SetPresence(context.Background(), 101, models.ActionSetPresentFrom, 3, monday.Add(8*time.Hour+5*time.Minute))
	require.NoError(t, err)

	status, err := svc.IsPresent(context.Background(), 101, monday.Add(8*time.Hour+20*time.Minute))
	require.NoError(t, err)
	assert.True(t, status.Present)

	// The window runs to the period end at 8:45; by then it has elapsed.
	_, err = svc.SetPresence(context.Background(), 101, models.ActionSetPresentUntil, 3, monday.Add(8*time.Hour+30*time.Minute))
	require.NoError(t, err)

	status, err = svc.IsPresent(context.Background(), 101, monday.Add(8*time.Hour+40*time.Minute))
	require.NoError(t, err)
	assert.False(t, status.Present)
}

func TestClassSnapshotListsAbsentStudentsWithNilBounds(t *testing.T) {
	presence := &mockPresenceRepo{}
	enrollments := &mockEnrollmentRepo{
		enrollments: map[int64]int64{101: 7, 102: 7},
		students: []models.User{
			{ID: 101, FirstName: "Ada", LastName: "Byron", Role: models.LevelStudent},
			{ID: 102, FirstName: "Alan", LastName: "Turing", Role: models.LevelStudent},
		},
	}
	svc := NewPresenceService(presence, enrollments, &mockLocator{entry: mathAt0800()}, nil, zap.NewNop())

	_, err := svc.SetPresence(context.Background(), 101, models.ActionSetPresentFrom, 3, monday.Add(8*time.Hour+5*time.Minute))
	require.NoError(t, err)

	snapshot, err := svc.ClassSnapshot(context.Background(), 7, monday.Add(8*time.Hour+10*time.Minute))
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	byStudent := make(map[int64]models.StudentPresence, len(snapshot))
	for _, sp := range snapshot {
		byStudent[sp.StudentID] = sp
	}
	require.NotNil(t, byStudent[101].PresentFrom)
	assert.Equal(t, 8*60+5, *byStudent[101].PresentFrom)
	assert.Nil(t, byStudent[102].PresentFrom)
	assert.Nil(t, byStudent[102].PresentUntil)
}

func TestDailyReportOneRowPerStudentAndSlot(t *testing.T) {
	presence := &mockPresenceRepo{}
	enrollments := &mockEnrollmentRepo{
		enrollments: map[int64]int64{101: 7},
		students: []models.User{
			{ID: 101, FirstName: "Ada", LastName: "Byron", Role: models.LevelStudent},
		},
	}
	svc := NewPresenceService(presence, enrollments, &mockLocator{entry: mathAt0800()}, nil, zap.NewNop())

	_, err := svc.SetPresence(context.Background(), 101, models.ActionSetPresentFrom, 3, monday.Add(8*time.Hour+5*time.Minute))
	require.NoError(t, err)

	dataset, err := svc.DailyReport(context.Background(), 7, monday)
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "Ada Byron", dataset.Rows[0][0])
	assert.Equal(t, "Math", dataset.Rows[0][2])
	assert.Equal(t, "08:05", dataset.Rows[0][3])
	assert.Equal(t, "08:45", dataset.Rows[0][4])
}
