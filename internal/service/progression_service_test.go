package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/questlog/internal/error_values"
	"github.com/limbo/questlog/internal/service"
	"github.com/limbo/questlog/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressionRepoMock struct {
	state  mockState
	row    *entity.UserProgression
	writes int
}

func (m *progressionRepoMock) GetByUserID(ctx context.Context, uid uuid.UUID) (*entity.UserProgression, error) {
	switch m.state {
	case stateDBError:
		return nil, errors.New("db error")
	default:
		if m.row == nil {
			return nil, errorvalues.ErrProgressionNotFound
		}
		row := *m.row
		return &row, nil
	}
}

func (m *progressionRepoMock) ApplyExperience(ctx context.Context, uid uuid.UUID, amount int) error {
	if m.state == stateDBError {
		return errors.New("db error")
	}
	if m.row == nil {
		m.row = &entity.UserProgression{UserID: uid}
	}
	m.row.TotalExperience += amount
	return nil
}

func (m *progressionRepoMock) RecordStreakActivity(ctx context.Context, uid uuid.UUID, count int, date time.Time) error {
	if m.state == stateDBError {
		return errors.New("db error")
	}
	if m.row == nil {
		m.row = &entity.UserProgression{UserID: uid}
	}
	m.row.StreakCount = count
	m.row.LastActivityDate = &date
	m.writes++
	return nil
}

func TestGetProgression(t *testing.T) {
	ctx := context.Background()
	t.Run("fresh user gets the zero progression", func(t *testing.T) {
		s := service.NewProgressionService(&progressionRepoMock{})
		p, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, p.TotalExperience)
		assert.Equal(t, 0, p.Level)
		assert.Equal(t, 0, p.StreakCount)
		assert.Nil(t, p.LastActivityDate)
	})
	t.Run("level is derived on read", func(t *testing.T) {
		mock := &progressionRepoMock{row: &entity.UserProgression{UserID: userID, TotalExperience: 350}}
		s := service.NewProgressionService(mock)
		p, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, p.Level)
	})
	t.Run("db error", func(t *testing.T) {
		s := service.NewProgressionService(&progressionRepoMock{state: stateDBError})
		_, err := s.Get(ctx, userID)
		assert.Error(t, err)
	})
}

func TestAwardExperienceService(t *testing.T) {
	ctx := context.Background()
	t.Run("awards and returns refreshed progression", func(t *testing.T) {
		mock := &progressionRepoMock{}
		s := service.NewProgressionService(mock)
		p, err := s.AwardExperience(ctx, userID, 150)
		require.NoError(t, err)
		assert.Equal(t, 150, p.TotalExperience)
		assert.Equal(t, 1, p.Level)
	})
	t.Run("negative amount never reaches the repository", func(t *testing.T) {
		mock := &progressionRepoMock{}
		s := service.NewProgressionService(mock)
		_, err := s.AwardExperience(ctx, userID, -50)
		assert.ErrorIs(t, err, errorvalues.ErrNegativeExperience)
		assert.Nil(t, mock.row)
	})
}

func TestRecordActivityService(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC)
	t.Run("first activity starts the streak", func(t *testing.T) {
		mock := &progressionRepoMock{}
		s := service.NewProgressionService(mock)
		p, err := s.RecordActivity(ctx, userID, today)
		require.NoError(t, err)
		assert.Equal(t, 1, p.StreakCount)
	})
	t.Run("same day repeat persists nothing", func(t *testing.T) {
		mock := &progressionRepoMock{}
		s := service.NewProgressionService(mock)
		_, err := s.RecordActivity(ctx, userID, today)
		require.NoError(t, err)
		p, err := s.RecordActivity(ctx, userID, today.Add(5*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, p.StreakCount)
		assert.Equal(t, 1, mock.writes)
	})
	t.Run("consecutive days extend", func(t *testing.T) {
		mock := &progressionRepoMock{}
		s := service.NewProgressionService(mock)
		for i := 0; i < 4; i++ {
			_, err := s.RecordActivity(ctx, userID, today.AddDate(0, 0, i))
			require.NoError(t, err)
		}
		assert.Equal(t, 4, mock.row.StreakCount)
	})
	t.Run("a gap resets to one", func(t *testing.T) {
		mock := &progressionRepoMock{}
		s := service.NewProgressionService(mock)
		_, err := s.RecordActivity(ctx, userID, today)
		require.NoError(t, err)
		p, err := s.RecordActivity(ctx, userID, today.AddDate(0, 0, 3))
		require.NoError(t, err)
		assert.Equal(t, 1, p.StreakCount)
	})
}
