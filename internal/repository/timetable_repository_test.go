package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolops/presence-api/internal/models"
)

func TestListRecurringByClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "class_id", "room_id", "period_id", "teacher_id", "subject", "day_of_week", "double_lesson", "created_at", "updated_at"}).
		AddRow("tt-1", int64(4), int64(2), 3, int64(9), "Math", 1, false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, room_id, period_id, teacher_id, subject, day_of_week, double_lesson, created_at, updated_at FROM timetable_entries WHERE class_id = $1 AND day_of_week = $2")).
		WithArgs(int64(4), 1).
		WillReturnRows(rows)

	entries, err := repo.ListRecurringByClass(context.Background(), 4, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Math", entries[0].Subject)
	assert.Equal(t, 3, entries[0].PeriodID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSubstitutionsByClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "class_id", "room_id", "period_id", "teacher_id", "subject", "day_of_week", "double_lesson", "date", "created_at", "updated_at"}).
		AddRow("sub-1", int64(4), int64(7), 3, int64(9), "Art", 1, false, date, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, room_id, period_id, teacher_id, subject, day_of_week, double_lesson, date, created_at, updated_at FROM substitutions WHERE class_id = $1 AND date = $2")).
		WithArgs(int64(4), date).
		WillReturnRows(rows)

	subs, err := repo.ListSubstitutionsByClass(context.Background(), 4, date)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Art", subs[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntryAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("INSERT INTO timetable_entries").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.TimetableEntry{ClassID: 4, RoomID: 2, PeriodID: 3, TeacherID: 9, Subject: "Math", DayOfWeek: 1}
	require.NoError(t, repo.CreateEntry(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPeriod(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "start_minute"}).AddRow(3, 550)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, start_minute FROM periods WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(rows)

	period, err := repo.FindPeriod(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 550, period.StartMinute)
	assert.NoError(t, mock.ExpectationsWereMet())
}
