package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
)

type mockClassRepo struct {
	classes map[int64]*models.Class
	nextID  int64
}

func (m *mockClassRepo) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	c, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (m *mockClassRepo) List(ctx context.Context) ([]models.Class, error) {
	out := make([]models.Class, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if m.classes == nil {
		m.classes = make(map[int64]*models.Class)
	}
	m.nextID++
	class.ID = m.nextID
	m.classes[class.ID] = class
	return nil
}

type mockEnrollmentWriter struct {
	enrollments map[int64]int64
	students    []models.User
}

func (m *mockEnrollmentWriter) Upsert(ctx context.Context, studentID, classID int64) (*models.Enrollment, error) {
	if m.enrollments == nil {
		m.enrollments = make(map[int64]int64)
	}
	m.enrollments[studentID] = classID
	return &models.Enrollment{StudentID: studentID, ClassID: classID}, nil
}

func (m *mockEnrollmentWriter) ListStudents(ctx context.Context, classID int64) ([]models.User, error) {
	return m.students, nil
}

func TestCreateClass(t *testing.T) {
	users := &mockUserCatalog{users: map[int64]*models.User{
		20: {ID: 20, Role: models.LevelTeacher},
	}}
	classes := &mockClassRepo{}
	svc := NewClassService(classes, &mockEnrollmentWriter{}, users, validator.New(), zap.NewNop())

	class, err := svc.Create(context.Background(), CreateClassRequest{Short: "7a", Description: "Year 7", TeacherID: 20})
	require.NoError(t, err)
	assert.NotZero(t, class.ID)
	assert.Equal(t, "7a", class.Short)
}

func TestCreateClassRejectsNonTeacher(t *testing.T) {
	users := &mockUserCatalog{users: map[int64]*models.User{
		101: {ID: 101, Role: models.LevelStudent},
	}}
	svc := NewClassService(&mockClassRepo{}, &mockEnrollmentWriter{}, users, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateClassRequest{Short: "7a", TeacherID: 101})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollMovesStudentBetweenClasses(t *testing.T) {
	users := &mockUserCatalog{users: map[int64]*models.User{
		101: {ID: 101, Role: models.LevelStudent},
	}}
	classes := &mockClassRepo{classes: map[int64]*models.Class{
		1: {ID: 1, Short: "7a", TeacherID: 20},
		2: {ID: 2, Short: "7b", TeacherID: 21},
	}}
	enrollments := &mockEnrollmentWriter{}
	svc := NewClassService(classes, enrollments, users, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), 101, 1)
	require.NoError(t, err)
	_, err = svc.Enroll(context.Background(), 101, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), enrollments.enrollments[101])
}

func TestEnrollRejectsTeacher(t *testing.T) {
	users := &mockUserCatalog{users: map[int64]*models.User{
		20: {ID: 20, Role: models.LevelTeacher},
	}}
	classes := &mockClassRepo{classes: map[int64]*models.Class{1: {ID: 1}}}
	svc := NewClassService(classes, &mockEnrollmentWriter{}, users, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), 20, 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollUnknownClass(t *testing.T) {
	users := &mockUserCatalog{users: map[int64]*models.User{
		101: {ID: 101, Role: models.LevelStudent},
	}}
	svc := NewClassService(&mockClassRepo{}, &mockEnrollmentWriter{}, users, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), 101, 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
