package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
)

type mockTimetableWriter struct {
	mockTimetableRepo
}

func (m *mockTimetableWriter) CreateEntry(ctx context.Context, entry *models.TimetableEntry) error {
	entry.ID = "entry-id"
	m.recurring = append(m.recurring, *entry)
	return nil
}

func (m *mockTimetableWriter) CreateSubstitution(ctx context.Context, sub *models.Substitution) error {
	sub.ID = "sub-id"
	m.substitutions = append(m.substitutions, *sub)
	return nil
}

func (m *mockTimetableWriter) CreatePeriod(ctx context.Context, period *models.Period) error {
	m.periods = append(m.periods, *period)
	return nil
}

func TestCreateEntryRequiresDefinedPeriod(t *testing.T) {
	repo := &mockTimetableWriter{mockTimetableRepo{periods: standardPeriods()}}
	svc := NewTimetableService(repo, validator.New(), zap.NewNop())

	_, err := svc.CreateEntry(context.Background(), CreateTimetableEntryRequest{
		ClassID: 7, RoomID: 1, PeriodID: 42, TeacherID: 20, Subject: "Math", DayOfWeek: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	entry, err := svc.CreateEntry(context.Background(), CreateTimetableEntryRequest{
		ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 20, Subject: "Math", DayOfWeek: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "entry-id", entry.ID)
}

func TestCreateSubstitutionDerivesDayFromDate(t *testing.T) {
	repo := &mockTimetableWriter{mockTimetableRepo{periods: standardPeriods()}}
	svc := NewTimetableService(repo, validator.New(), zap.NewNop())

	sub, err := svc.CreateSubstitution(context.Background(), CreateSubstitutionRequest{
		CreateTimetableEntryRequest: CreateTimetableEntryRequest{
			ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 33, Subject: "Art", DayOfWeek: 4,
		},
		Date: "2026-03-02",
	})
	require.NoError(t, err)
	// 2026-03-02 is a Monday regardless of what the payload claimed.
	assert.Equal(t, 1, sub.DayOfWeek)
	assert.Equal(t, monday, sub.Date)
}

func TestCreateSubstitutionRejectsBadDate(t *testing.T) {
	repo := &mockTimetableWriter{mockTimetableRepo{periods: standardPeriods()}}
	svc := NewTimetableService(repo, validator.New(), zap.NewNop())

	_, err := svc.CreateSubstitution(context.Background(), CreateSubstitutionRequest{
		CreateTimetableEntryRequest: CreateTimetableEntryRequest{
			ClassID: 7, RoomID: 1, PeriodID: 1, TeacherID: 33, Subject: "Art",
		},
		Date: "02.03.2026",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreatePeriod(t *testing.T) {
	repo := &mockTimetableWriter{}
	svc := NewTimetableService(repo, validator.New(), zap.NewNop())

	period, err := svc.CreatePeriod(context.Background(), CreatePeriodRequest{ID: 1, StartMinute: 8 * 60})
	require.NoError(t, err)
	assert.Equal(t, 8*60, period.StartMinute)

	periods, err := svc.ListPeriods(context.Background())
	require.NoError(t, err)
	assert.Len(t, periods, 1)
}
