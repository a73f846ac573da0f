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

type mockState int

const (
	stateSuccess mockState = iota
	stateDBError
	stateQuestNotFound
	stateSubtaskNotFound
	stateWrongOwner
)

var (
	userID    = uuid.New()
	questID   = uuid.New()
	subtaskID = uuid.New()
	now       = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
)

func testQuest() entity.Quest {
	due := time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC)
	return entity.Quest{
		ID:               questID,
		UserID:           userID,
		Name:             "write report",
		Category:         "Work",
		Goal:             "quarterly numbers",
		DueDate:          &due,
		ExperienceReward: 100,
		Priority:         2,
		Status:           entity.StatusAvailable,
		Progress:         0,
	}
}

type questsRepoMock struct {
	state mockState
	quest entity.Quest
}

func (m *questsRepoMock) Create(ctx context.Context, quest *entity.Quest) (uuid.UUID, error) {
	switch m.state {
	case stateDBError:
		return uuid.UUID{}, errors.New("db error")
	default:
		m.quest = *quest
		m.quest.ID = questID
		return questID, nil
	}
}

func (m *questsRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quest, error) {
	switch m.state {
	case stateQuestNotFound:
		return nil, errorvalues.ErrQuestNotFound
	case stateDBError:
		return nil, errors.New("db error")
	case stateWrongOwner:
		q := m.quest
		q.UserID = uuid.New()
		return &q, nil
	default:
		q := m.quest
		return &q, nil
	}
}

func (m *questsRepoMock) GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Quest, error) {
	switch m.state {
	case stateDBError:
		return nil, errors.New("db error")
	default:
		q := m.quest
		return []*entity.Quest{&q}, nil
	}
}

func (m *questsRepoMock) Update(ctx context.Context, quest *entity.Quest) error {
	switch m.state {
	case stateDBError:
		return errors.New("db error")
	case stateQuestNotFound:
		return errorvalues.ErrQuestNotFound
	default:
		m.quest = *quest
		return nil
	}
}

func (m *questsRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	switch m.state {
	case stateDBError:
		return errors.New("db error")
	case stateQuestNotFound:
		return errorvalues.ErrQuestNotFound
	default:
		return nil
	}
}

type subtasksRepoMock struct {
	state mockState
	sub   entity.Subtask
}

func (m *subtasksRepoMock) Create(ctx context.Context, sub *entity.Subtask) (uuid.UUID, error) {
	switch m.state {
	case stateDBError:
		return uuid.UUID{}, errors.New("db error")
	default:
		m.sub = *sub
		m.sub.ID = subtaskID
		return subtaskID, nil
	}
}

func (m *subtasksRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*entity.Subtask, error) {
	switch m.state {
	case stateSubtaskNotFound:
		return nil, errorvalues.ErrSubtaskNotFound
	case stateDBError:
		return nil, errors.New("db error")
	default:
		s := m.sub
		return &s, nil
	}
}

func (m *subtasksRepoMock) GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Subtask, error) {
	switch m.state {
	case stateDBError:
		return nil, errors.New("db error")
	default:
		s := m.sub
		return []*entity.Subtask{&s}, nil
	}
}

func (m *subtasksRepoMock) Update(ctx context.Context, sub *entity.Subtask) error {
	switch m.state {
	case stateDBError:
		return errors.New("db error")
	case stateSubtaskNotFound:
		return errorvalues.ErrSubtaskNotFound
	default:
		m.sub = *sub
		return nil
	}
}

func (m *subtasksRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	switch m.state {
	case stateDBError:
		return errors.New("db error")
	case stateSubtaskNotFound:
		return errorvalues.ErrSubtaskNotFound
	default:
		return nil
	}
}

// progressionMock records completion side effects so tests can assert the
// one-way reward behavior.
type progressionMock struct {
	awards     []int
	activities []time.Time
}

func (m *progressionMock) Get(ctx context.Context, uid uuid.UUID) (*entity.UserProgression, error) {
	return &entity.UserProgression{UserID: uid}, nil
}

func (m *progressionMock) AwardExperience(ctx context.Context, uid uuid.UUID, amount int) (*entity.UserProgression, error) {
	m.awards = append(m.awards, amount)
	return &entity.UserProgression{UserID: uid, TotalExperience: amount}, nil
}

func (m *progressionMock) RecordActivity(ctx context.Context, uid uuid.UUID, today time.Time) (*entity.UserProgression, error) {
	m.activities = append(m.activities, today)
	return &entity.UserProgression{UserID: uid}, nil
}

func newService() (*service.QuestsService, *questsRepoMock, *subtasksRepoMock, *progressionMock) {
	qMock := &questsRepoMock{quest: testQuest()}
	sMock := &subtasksRepoMock{sub: entity.Subtask{ID: subtaskID, ParentID: questID, UserID: userID, Name: "collect numbers", Status: entity.StatusAvailable}}
	pMock := &progressionMock{}
	return service.NewQuestsService(qMock, sMock, pMock), qMock, sMock, pMock
}

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

func TestCreateQuest(t *testing.T) {
	ctx := context.Background()
	t.Run("success with defaults", func(t *testing.T) {
		s, qMock, _, _ := newService()
		q, err := s.CreateQuest(ctx, userID, service.CreateQuestRequest{Name: "new quest"}, now)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusAvailable, q.Status)
		assert.Equal(t, 0, q.Progress)
		assert.Equal(t, entity.DefaultCategory, q.Category)
		assert.Equal(t, 1, q.Priority)
		assert.Empty(t, q.Subtasks)
		assert.Equal(t, userID, qMock.quest.UserID)
	})
	t.Run("response recomputes derived fields", func(t *testing.T) {
		s, _, _, _ := newService()
		past := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
		q, err := s.CreateQuest(ctx, userID, service.CreateQuestRequest{Name: "late already", DueDate: &past}, now)
		require.NoError(t, err)
		require.NotNil(t, q.DaysLeft)
		assert.Equal(t, -3, *q.DaysLeft)
		assert.True(t, q.IsOverdue)
	})
	t.Run("blank name", func(t *testing.T) {
		s, _, _, _ := newService()
		_, err := s.CreateQuest(ctx, userID, service.CreateQuestRequest{Name: ""}, now)
		assert.ErrorIs(t, err, errorvalues.ErrEmptyName)
	})
	t.Run("negative reward", func(t *testing.T) {
		s, _, _, _ := newService()
		_, err := s.CreateQuest(ctx, userID, service.CreateQuestRequest{Name: "q", ExperienceReward: -10}, now)
		assert.ErrorIs(t, err, errorvalues.ErrNegativeExperience)
	})
	t.Run("priority out of range", func(t *testing.T) {
		s, _, _, _ := newService()
		_, err := s.CreateQuest(ctx, userID, service.CreateQuestRequest{Name: "q", Priority: 7}, now)
		assert.ErrorIs(t, err, errorvalues.ErrPriorityOutOfRange)
	})
	t.Run("db error", func(t *testing.T) {
		s, qMock, _, _ := newService()
		qMock.state = stateDBError
		_, err := s.CreateQuest(ctx, userID, service.CreateQuestRequest{Name: "q"}, now)
		assert.Error(t, err)
	})
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	t.Run("nests subtasks and recomputes derived fields", func(t *testing.T) {
		s, _, _, _ := newService()
		quests, err := s.Snapshot(ctx, userID, now)
		require.NoError(t, err)
		require.Len(t, quests, 1)
		q := quests[0]
		require.NotNil(t, q.DaysLeft)
		assert.Equal(t, 3, *q.DaysLeft)
		assert.False(t, q.IsOverdue)
		require.Len(t, q.Subtasks, 1)
		sub := q.Subtasks[0]
		assert.Equal(t, q.Name, sub.ParentName)
		assert.Equal(t, entity.SubtaskCategory, sub.Category)
		assert.Equal(t, 25, sub.ExperienceReward)
		assert.Equal(t, 1, sub.Priority)
	})
	t.Run("overdue flag", func(t *testing.T) {
		s, qMock, _, _ := newService()
		past := now.AddDate(0, 0, -3)
		qMock.quest.DueDate = &past
		quests, err := s.Snapshot(ctx, userID, now)
		require.NoError(t, err)
		assert.True(t, quests[0].IsOverdue)
		assert.Equal(t, -3, *quests[0].DaysLeft)
	})
	t.Run("completed quest is never overdue", func(t *testing.T) {
		s, qMock, _, _ := newService()
		past := now.AddDate(0, 0, -3)
		qMock.quest.DueDate = &past
		qMock.quest.Status = entity.StatusCompleted
		quests, err := s.Snapshot(ctx, userID, now)
		require.NoError(t, err)
		assert.False(t, quests[0].IsOverdue)
	})
	t.Run("db error", func(t *testing.T) {
		s, qMock, _, _ := newService()
		qMock.state = stateDBError
		_, err := s.Snapshot(ctx, userID, now)
		assert.Error(t, err)
	})
}

func TestUpdateQuest(t *testing.T) {
	ctx := context.Background()
	name := "renamed"
	t.Run("merges patch", func(t *testing.T) {
		s, qMock, _, _ := newService()
		q, err := s.UpdateQuest(ctx, userID, questID, service.UpdateQuestRequest{Name: &name}, now)
		require.NoError(t, err)
		assert.Equal(t, "renamed", q.Name)
		// Untouched fields survive the merge
		assert.Equal(t, 100, qMock.quest.ExperienceReward)
		// Write responses carry recomputed derived fields like any read
		require.NotNil(t, q.DaysLeft)
		assert.Equal(t, 3, *q.DaysLeft)
	})
	t.Run("clears due date", func(t *testing.T) {
		s, qMock, _, _ := newService()
		_, err := s.UpdateQuest(ctx, userID, questID, service.UpdateQuestRequest{ClearDueDate: true}, now)
		require.NoError(t, err)
		assert.Nil(t, qMock.quest.DueDate)
	})
	t.Run("priority out of range", func(t *testing.T) {
		s, _, _, _ := newService()
		bad := 5
		_, err := s.UpdateQuest(ctx, userID, questID, service.UpdateQuestRequest{Priority: &bad}, now)
		assert.ErrorIs(t, err, errorvalues.ErrPriorityOutOfRange)
	})
	t.Run("progress out of range", func(t *testing.T) {
		s, _, _, _ := newService()
		bad := 150
		_, err := s.UpdateQuest(ctx, userID, questID, service.UpdateQuestRequest{Progress: &bad}, now)
		assert.ErrorIs(t, err, errorvalues.ErrProgressOutOfRange)
	})
	t.Run("quest not found", func(t *testing.T) {
		s, qMock, _, _ := newService()
		qMock.state = stateQuestNotFound
		_, err := s.UpdateQuest(ctx, userID, questID, service.UpdateQuestRequest{Name: &name}, now)
		assert.ErrorIs(t, err, errorvalues.ErrQuestNotFound)
	})
	t.Run("wrong owner", func(t *testing.T) {
		s, qMock, _, _ := newService()
		qMock.state = stateWrongOwner
		_, err := s.UpdateQuest(ctx, userID, questID, service.UpdateQuestRequest{Name: &name}, now)
		assert.ErrorIs(t, err, errorvalues.ErrWrongOwner)
	})
}

func TestDeleteQuest(t *testing.T) {
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		s, _, _, _ := newService()
		assert.NoError(t, s.DeleteQuest(ctx, userID, questID))
	})
	t.Run("not found", func(t *testing.T) {
		s, qMock, _, _ := newService()
		qMock.state = stateQuestNotFound
		assert.ErrorIs(t, s.DeleteQuest(ctx, userID, questID), errorvalues.ErrQuestNotFound)
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	t.Run("completing awards experience and records activity once", func(t *testing.T) {
		s, qMock, _, pMock := newService()
		q, err := s.ChangeStatus(ctx, userID, questID, entity.StatusCompleted, now)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, q.Status)
		assert.Equal(t, 100, q.Progress)
		require.NotNil(t, q.DaysLeft)
		assert.Equal(t, 3, *q.DaysLeft)
		assert.Equal(t, []int{100}, pMock.awards)
		require.Len(t, pMock.activities, 1)
		assert.Equal(t, now, pMock.activities[0])
		assert.Equal(t, entity.StatusCompleted, qMock.quest.Status)
	})
	t.Run("completing an already completed quest awards nothing", func(t *testing.T) {
		s, qMock, _, pMock := newService()
		qMock.quest.Status = entity.StatusCompleted
		_, err := s.ChangeStatus(ctx, userID, questID, entity.StatusCompleted, now)
		require.NoError(t, err)
		assert.Empty(t, pMock.awards)
		assert.Empty(t, pMock.activities)
	})
	t.Run("reactivating never retracts the reward", func(t *testing.T) {
		s, qMock, _, pMock := newService()
		qMock.quest.Status = entity.StatusCompleted
		q, err := s.ChangeStatus(ctx, userID, questID, entity.StatusAvailable, now)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusAvailable, q.Status)
		assert.Empty(t, pMock.awards)
	})
	t.Run("invalid status", func(t *testing.T) {
		s, _, _, _ := newService()
		_, err := s.ChangeStatus(ctx, userID, questID, entity.Status("paused"), now)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidStatus)
	})
	t.Run("quest not found", func(t *testing.T) {
		s, qMock, _, _ := newService()
		qMock.state = stateQuestNotFound
		_, err := s.ChangeStatus(ctx, userID, questID, entity.StatusOngoing, now)
		assert.ErrorIs(t, err, errorvalues.ErrQuestNotFound)
	})
}

func TestAddSubtask(t *testing.T) {
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		s, _, sMock, _ := newService()
		sub, err := s.AddSubtask(ctx, userID, questID, service.CreateSubtaskRequest{Name: "step"}, now)
		require.NoError(t, err)
		assert.Equal(t, questID, sub.ParentID)
		assert.Equal(t, entity.StatusAvailable, sub.Status)
		assert.Equal(t, "step", sMock.sub.Name)
		// Display defaults are resolved on the response, markers stay stored
		assert.Equal(t, entity.SubtaskCategory, sub.Category)
		assert.Equal(t, 25, sub.ExperienceReward)
		assert.Equal(t, 1, sub.Priority)
		assert.Equal(t, "write report", sub.ParentName)
		assert.Empty(t, sMock.sub.Category)
		assert.Zero(t, sMock.sub.ExperienceReward)
	})
	t.Run("blank name", func(t *testing.T) {
		s, _, _, _ := newService()
		_, err := s.AddSubtask(ctx, userID, questID, service.CreateSubtaskRequest{}, now)
		assert.ErrorIs(t, err, errorvalues.ErrEmptyName)
	})
	t.Run("parent not found", func(t *testing.T) {
		s, qMock, _, _ := newService()
		qMock.state = stateQuestNotFound
		_, err := s.AddSubtask(ctx, userID, questID, service.CreateSubtaskRequest{Name: "step"}, now)
		assert.ErrorIs(t, err, errorvalues.ErrQuestNotFound)
	})
}

func TestChangeSubtaskStatus(t *testing.T) {
	ctx := context.Background()
	t.Run("completing awards the inherited reward", func(t *testing.T) {
		s, _, sMock, pMock := newService()
		sub, err := s.ChangeSubtaskStatus(ctx, userID, questID, subtaskID, entity.StatusCompleted, now)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, sub.Status)
		assert.Equal(t, 100, sub.Progress)
		// Parent reward 100, subtask carries none of its own
		assert.Equal(t, []int{25}, pMock.awards)
		assert.Equal(t, entity.StatusCompleted, sMock.sub.Status)
	})
	t.Run("explicit reward wins over inheritance", func(t *testing.T) {
		s, _, sMock, pMock := newService()
		sMock.sub.ExperienceReward = 40
		_, err := s.ChangeSubtaskStatus(ctx, userID, questID, subtaskID, entity.StatusCompleted, now)
		require.NoError(t, err)
		assert.Equal(t, []int{40}, pMock.awards)
	})
	t.Run("subtask under different quest", func(t *testing.T) {
		s, _, sMock, _ := newService()
		sMock.sub.ParentID = uuid.New()
		_, err := s.ChangeSubtaskStatus(ctx, userID, questID, subtaskID, entity.StatusCompleted, now)
		assert.ErrorIs(t, err, errorvalues.ErrSubtaskNotFound)
	})
	t.Run("subtask not found", func(t *testing.T) {
		s, _, sMock, _ := newService()
		sMock.state = stateSubtaskNotFound
		_, err := s.ChangeSubtaskStatus(ctx, userID, questID, subtaskID, entity.StatusCompleted, now)
		assert.ErrorIs(t, err, errorvalues.ErrSubtaskNotFound)
	})
}

func TestUpdateSubtask(t *testing.T) {
	ctx := context.Background()
	t.Run("merges patch", func(t *testing.T) {
		s, _, sMock, _ := newService()
		progress := 60
		sub, err := s.UpdateSubtask(ctx, userID, questID, subtaskID, service.UpdateSubtaskRequest{Progress: &progress}, now)
		require.NoError(t, err)
		assert.Equal(t, 60, sub.Progress)
		assert.Equal(t, 60, sMock.sub.Progress)
		assert.Equal(t, entity.SubtaskCategory, sub.Category)
		assert.Equal(t, 25, sub.ExperienceReward)
	})
	t.Run("progress out of range", func(t *testing.T) {
		s, _, _, _ := newService()
		bad := -5
		_, err := s.UpdateSubtask(ctx, userID, questID, subtaskID, service.UpdateSubtaskRequest{Progress: &bad}, now)
		assert.ErrorIs(t, err, errorvalues.ErrProgressOutOfRange)
	})
}

func TestDeleteSubtask(t *testing.T) {
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		s, _, _, _ := newService()
		assert.NoError(t, s.DeleteSubtask(ctx, userID, questID, subtaskID))
	})
	t.Run("not found", func(t *testing.T) {
		s, _, sMock, _ := newService()
		sMock.state = stateSubtaskNotFound
		assert.ErrorIs(t, s.DeleteSubtask(ctx, userID, questID, subtaskID), errorvalues.ErrSubtaskNotFound)
	})
}
