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

func TestFindUserByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	hash := "hash"
	rows := sqlmock.NewRows([]string{"id", "first_name", "middle_name", "last_name", "short_code", "role", "password_hash", "created_at", "updated_at"}).
		AddRow(int64(11), "Mara", nil, "Lenz", "LEN", int(models.LevelStudent), &hash, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, middle_name, last_name, short_code, role, password_hash, created_at, updated_at FROM users WHERE id = $1")).
		WithArgs(int64(11)).
		WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "Mara", user.FirstName)
	assert.True(t, user.HasPassword())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(42))
	mock.ExpectQuery("INSERT INTO users").WillReturnRows(rows)

	user := &models.User{FirstName: "Mara", LastName: "Lenz", ShortCode: "LEN", Role: models.LevelStudent}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(42), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersFiltersByRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	role := models.LevelTeacher
	listRows := sqlmock.NewRows([]string{"id", "first_name", "middle_name", "last_name", "short_code", "role", "password_hash", "created_at", "updated_at"}).
		AddRow(int64(9), "Jon", nil, "Berg", "BER", int(role), nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, middle_name, last_name, short_code, role, password_hash, created_at, updated_at FROM users WHERE 1=1 AND role = $1 ORDER BY last_name ASC LIMIT 20 OFFSET 0")).
		WithArgs(role).
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1 AND role = $1")).
		WithArgs(role).
		WillReturnRows(countRows)

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.False(t, users[0].HasPassword())
	assert.NoError(t, mock.ExpectationsWereMet())
}
