package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/questlog/internal/error_values"
	"github.com/limbo/questlog/internal/repository"
	"github.com/limbo/questlog/pkg/entity"
)

// QuestsService owns the quest/subtask lifecycle. Validation happens before
// any repository call; a failed write leaves nothing behind locally because
// every read refetches the collection (last-write-wins at the persistence
// boundary).
type QuestsService struct {
	quests      repository.QuestsRepositoryI
	subtasks    repository.SubtasksRepositoryI
	progression ProgressionServiceI
}

func NewQuestsService(questsRepo repository.QuestsRepositoryI, subtasksRepo repository.SubtasksRepositoryI, progression ProgressionServiceI) *QuestsService {
	if questsRepo == nil || subtasksRepo == nil || progression == nil {
		log.Fatal("on quests service provided nil dependencies")
	}
	return &QuestsService{
		quests:      questsRepo,
		subtasks:    subtasksRepo,
		progression: progression,
	}
}

func (qs *QuestsService) CreateQuest(ctx context.Context, uid uuid.UUID, req CreateQuestRequest, now time.Time) (*entity.Quest, error) {
	if err := validate.Struct(req); err != nil {
		return nil, mapValidationError(err)
	}
	q := entity.Quest{
		UserID:           uid,
		Name:             req.Name,
		Category:         req.Category,
		Goal:             req.Goal,
		DueDate:          req.DueDate,
		ExperienceReward: req.ExperienceReward,
		Priority:         req.Priority,
		Status:           entity.StatusAvailable,
		Progress:         0,
	}
	if q.Category == "" {
		q.Category = entity.DefaultCategory
	}
	if q.Priority == 0 {
		q.Priority = 1
	}
	id, err := qs.quests.Create(ctx, &q)
	if err != nil {
		return nil, errors.New("quests repository error: " + err.Error())
	}
	return qs.fetchDecoratedQuest(ctx, id, now)
}

// Snapshot is the single read path: the full collection is refetched and
// derived fields are recomputed against the caller's now.
func (qs *QuestsService) Snapshot(ctx context.Context, uid uuid.UUID, now time.Time) ([]entity.Quest, error) {
	quests, err := qs.quests.GetByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("quests repository error: " + err.Error())
	}
	subs, err := qs.subtasks.GetByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("subtasks repository error: " + err.Error())
	}
	return assemble(quests, subs, now), nil
}

func (qs *QuestsService) UpdateQuest(ctx context.Context, uid, questID uuid.UUID, patch UpdateQuestRequest, now time.Time) (*entity.Quest, error) {
	quest, err := qs.fetchOwnedQuest(ctx, uid, questID)
	if err != nil {
		return nil, err
	}
	applyPatch(quest, patch)
	if err := checkRanges(quest.Priority, quest.Progress, quest.ExperienceReward); err != nil {
		return nil, err
	}
	if quest.Name == "" {
		return nil, errorvalues.ErrEmptyName
	}
	if err := qs.quests.Update(ctx, quest); err != nil {
		if errors.Is(err, errorvalues.ErrQuestNotFound) {
			return nil, err
		}
		return nil, errors.New("quests repository error: " + err.Error())
	}
	return qs.fetchDecoratedQuest(ctx, questID, now)
}

func (qs *QuestsService) DeleteQuest(ctx context.Context, uid, questID uuid.UUID) error {
	if _, err := qs.fetchOwnedQuest(ctx, uid, questID); err != nil {
		return err
	}
	err := qs.quests.Delete(ctx, questID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrQuestNotFound) {
			return err
		}
		return errors.New("quests repository error: " + err.Error())
	}
	return nil
}

func (qs *QuestsService) ChangeStatus(ctx context.Context, uid, questID uuid.UUID, newStatus entity.Status, now time.Time) (*entity.Quest, error) {
	if !newStatus.Valid() {
		return nil, errorvalues.ErrInvalidStatus
	}
	quest, err := qs.fetchOwnedQuest(ctx, uid, questID)
	if err != nil {
		return nil, err
	}
	completing := quest.Status != entity.StatusCompleted && newStatus == entity.StatusCompleted
	quest.Status = newStatus
	if completing {
		quest.Progress = 100
	}
	if err := qs.quests.Update(ctx, quest); err != nil {
		if errors.Is(err, errorvalues.ErrQuestNotFound) {
			return nil, err
		}
		return nil, errors.New("quests repository error: " + err.Error())
	}
	if completing {
		if err := qs.rewardCompletion(ctx, uid, quest.ExperienceReward, now); err != nil {
			return nil, err
		}
	}
	return qs.fetchDecoratedQuest(ctx, questID, now)
}

func (qs *QuestsService) AddSubtask(ctx context.Context, uid, questID uuid.UUID, req CreateSubtaskRequest, now time.Time) (*entity.Subtask, error) {
	if err := validate.Struct(req); err != nil {
		return nil, mapValidationError(err)
	}
	parent, err := qs.fetchOwnedQuest(ctx, uid, questID)
	if err != nil {
		return nil, err
	}
	sub := entity.Subtask{
		ParentID:         questID,
		UserID:           uid,
		Name:             req.Name,
		Category:         req.Category,
		Goal:             req.Goal,
		DueDate:          req.DueDate,
		ExperienceReward: req.ExperienceReward,
		Priority:         req.Priority,
		Status:           entity.StatusAvailable,
		Progress:         0,
	}
	id, err := qs.subtasks.Create(ctx, &sub)
	if err != nil {
		if errors.Is(err, errorvalues.ErrQuestNotFound) {
			return nil, err
		}
		return nil, errors.New("subtasks repository error: " + err.Error())
	}
	return qs.fetchDecoratedSubtask(ctx, id, parent, now)
}

func (qs *QuestsService) UpdateSubtask(ctx context.Context, uid, questID, subtaskID uuid.UUID, patch UpdateSubtaskRequest, now time.Time) (*entity.Subtask, error) {
	sub, err := qs.fetchOwnedSubtask(ctx, uid, questID, subtaskID)
	if err != nil {
		return nil, err
	}
	parent, err := qs.fetchOwnedQuest(ctx, uid, questID)
	if err != nil {
		return nil, err
	}
	applySubtaskPatch(sub, patch)
	if err := checkSubtaskRanges(sub.Priority, sub.Progress, sub.ExperienceReward); err != nil {
		return nil, err
	}
	if sub.Name == "" {
		return nil, errorvalues.ErrEmptyName
	}
	if err := qs.subtasks.Update(ctx, sub); err != nil {
		if errors.Is(err, errorvalues.ErrSubtaskNotFound) {
			return nil, err
		}
		return nil, errors.New("subtasks repository error: " + err.Error())
	}
	return qs.fetchDecoratedSubtask(ctx, subtaskID, parent, now)
}

func (qs *QuestsService) DeleteSubtask(ctx context.Context, uid, questID, subtaskID uuid.UUID) error {
	if _, err := qs.fetchOwnedSubtask(ctx, uid, questID, subtaskID); err != nil {
		return err
	}
	err := qs.subtasks.Delete(ctx, subtaskID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrSubtaskNotFound) {
			return err
		}
		return errors.New("subtasks repository error: " + err.Error())
	}
	return nil
}

func (qs *QuestsService) ChangeSubtaskStatus(ctx context.Context, uid, questID, subtaskID uuid.UUID, newStatus entity.Status, now time.Time) (*entity.Subtask, error) {
	if !newStatus.Valid() {
		return nil, errorvalues.ErrInvalidStatus
	}
	sub, err := qs.fetchOwnedSubtask(ctx, uid, questID, subtaskID)
	if err != nil {
		return nil, err
	}
	parent, err := qs.quests.GetByID(ctx, questID)
	if err != nil {
		return nil, errors.New("quests repository error: " + err.Error())
	}
	completing := sub.Status != entity.StatusCompleted && newStatus == entity.StatusCompleted
	sub.Status = newStatus
	if completing {
		sub.Progress = 100
	}
	if err := qs.subtasks.Update(ctx, sub); err != nil {
		if errors.Is(err, errorvalues.ErrSubtaskNotFound) {
			return nil, err
		}
		return nil, errors.New("subtasks repository error: " + err.Error())
	}
	if completing {
		reward := sub.ExperienceReward
		if reward == 0 {
			reward = parent.ExperienceReward / 4
		}
		if err := qs.rewardCompletion(ctx, uid, reward, now); err != nil {
			return nil, err
		}
	}
	return qs.fetchDecoratedSubtask(ctx, subtaskID, parent, now)
}

// rewardCompletion is the one-way gamification side effect: experience is
// awarded and today counts as activity. Moving an item back out of
// completed never reverses either.
func (qs *QuestsService) rewardCompletion(ctx context.Context, uid uuid.UUID, reward int, now time.Time) error {
	if _, err := qs.progression.AwardExperience(ctx, uid, reward); err != nil {
		return errors.New("awarding experience error: " + err.Error())
	}
	if _, err := qs.progression.RecordActivity(ctx, uid, now); err != nil {
		return errors.New("recording streak activity error: " + err.Error())
	}
	return nil
}

// fetchDecoratedQuest refetches a quest after a write and recomputes the
// derived fields against now. Write responses carry no subtask list; the
// snapshot is the only nested read.
func (qs *QuestsService) fetchDecoratedQuest(ctx context.Context, id uuid.UUID, now time.Time) (*entity.Quest, error) {
	quest, err := qs.quests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrQuestNotFound) {
			return nil, err
		}
		return nil, errors.New("quests repository error: " + err.Error())
	}
	quest.Subtasks = []entity.Subtask{}
	decorateQuest(quest, now)
	return quest, nil
}

func (qs *QuestsService) fetchDecoratedSubtask(ctx context.Context, id uuid.UUID, parent *entity.Quest, now time.Time) (*entity.Subtask, error) {
	sub, err := qs.subtasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrSubtaskNotFound) {
			return nil, err
		}
		return nil, errors.New("subtasks repository error: " + err.Error())
	}
	decorateSubtask(sub, parent, now)
	return sub, nil
}

func (qs *QuestsService) fetchOwnedQuest(ctx context.Context, uid, questID uuid.UUID) (*entity.Quest, error) {
	quest, err := qs.quests.GetByID(ctx, questID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrQuestNotFound) {
			return nil, err
		}
		return nil, errors.New("quests repository error: " + err.Error())
	}
	if quest.UserID != uid {
		return nil, errorvalues.ErrWrongOwner
	}
	return quest, nil
}

func (qs *QuestsService) fetchOwnedSubtask(ctx context.Context, uid, questID, subtaskID uuid.UUID) (*entity.Subtask, error) {
	sub, err := qs.subtasks.GetByID(ctx, subtaskID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrSubtaskNotFound) {
			return nil, err
		}
		return nil, errors.New("subtasks repository error: " + err.Error())
	}
	if sub.ParentID != questID {
		return nil, errorvalues.ErrSubtaskNotFound
	}
	if sub.UserID != uid {
		return nil, errorvalues.ErrWrongOwner
	}
	return sub, nil
}

func applyPatch(q *entity.Quest, patch UpdateQuestRequest) {
	if patch.Name != nil {
		q.Name = *patch.Name
	}
	if patch.Category != nil {
		q.Category = *patch.Category
	}
	if patch.Goal != nil {
		q.Goal = *patch.Goal
	}
	if patch.DueDate != nil {
		q.DueDate = patch.DueDate
	}
	if patch.ClearDueDate {
		q.DueDate = nil
	}
	if patch.ExperienceReward != nil {
		q.ExperienceReward = *patch.ExperienceReward
	}
	if patch.Priority != nil {
		q.Priority = *patch.Priority
	}
	if patch.Progress != nil {
		q.Progress = *patch.Progress
	}
}

func applySubtaskPatch(s *entity.Subtask, patch UpdateSubtaskRequest) {
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.Category != nil {
		s.Category = *patch.Category
	}
	if patch.Goal != nil {
		s.Goal = *patch.Goal
	}
	if patch.DueDate != nil {
		s.DueDate = patch.DueDate
	}
	if patch.ClearDueDate {
		s.DueDate = nil
	}
	if patch.ExperienceReward != nil {
		s.ExperienceReward = *patch.ExperienceReward
	}
	if patch.Priority != nil {
		s.Priority = *patch.Priority
	}
	if patch.Progress != nil {
		s.Progress = *patch.Progress
	}
}

func checkRanges(priority, progress, reward int) error {
	if priority < 1 || priority > 4 {
		return errorvalues.ErrPriorityOutOfRange
	}
	if progress < 0 || progress > 100 {
		return errorvalues.ErrProgressOutOfRange
	}
	if reward < 0 {
		return errorvalues.ErrNegativeExperience
	}
	return nil
}

// Subtasks keep zero priority/reward as "inherit from parent" markers, so
// only explicit values are range checked.
func checkSubtaskRanges(priority, progress, reward int) error {
	if priority != 0 && (priority < 1 || priority > 4) {
		return errorvalues.ErrPriorityOutOfRange
	}
	if progress < 0 || progress > 100 {
		return errorvalues.ErrProgressOutOfRange
	}
	if reward < 0 {
		return errorvalues.ErrNegativeExperience
	}
	return nil
}
