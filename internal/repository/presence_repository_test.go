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

func TestFindPresence(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPresenceRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "date", "period_id", "present_from", "present_until", "room_id", "created_at", "updated_at"}).
		AddRow("rec-1", int64(11), date, 3, 550, 585, int64(7), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, date, period_id, present_from, present_until, room_id, created_at, updated_at FROM presence_records WHERE student_id = $1 AND date = $2 AND period_id = $3")).
		WithArgs(int64(11), date, 3).
		WillReturnRows(rows)

	record, err := repo.Find(context.Background(), 11, date, 3)
	require.NoError(t, err)
	assert.Equal(t, 550, record.PresentFrom)
	assert.Equal(t, 585, record.PresentUntil)
	assert.Equal(t, int64(7), record.RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPresenceKeepsRoomOnConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPresenceRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	// Conflict update rewrites only the window bounds: the stored room wins
	// over whatever the second call supplied.
	rows := sqlmock.NewRows([]string{"id", "student_id", "date", "period_id", "present_from", "present_until", "room_id", "created_at", "updated_at"}).
		AddRow("rec-1", int64(11), date, 3, 550, 560, int64(7), now, now)
	mock.ExpectQuery("INSERT INTO presence_records .*ON CONFLICT \\(student_id, date, period_id\\)").
		WillReturnRows(rows)

	stored, err := repo.Upsert(context.Background(), &models.PresenceRecord{
		StudentID:    11,
		Date:         date,
		PeriodID:     3,
		PresentFrom:  550,
		PresentUntil: 560,
		RoomID:       9,
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", stored.ID)
	assert.Equal(t, int64(7), stored.RoomID)
	assert.Equal(t, 560, stored.PresentUntil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPresenceRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "date", "period_id", "present_from", "present_until", "room_id", "created_at", "updated_at"}).
		AddRow("rec-1", int64(11), date, 3, 550, 585, int64(7), now, now).
		AddRow("rec-2", int64(12), date, 3, 552, 585, int64(7), now, now)
	mock.ExpectQuery("SELECT .* FROM presence_records p\\s+JOIN enrollments e ON e.student_id = p.student_id").
		WithArgs(int64(4), date, 3).
		WillReturnRows(rows)

	records, err := repo.ListByClass(context.Background(), 4, date, 3)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
