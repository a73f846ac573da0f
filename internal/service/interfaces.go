package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/questlog/pkg/entity"
)

type CreateQuestRequest struct {
	Name             string     `validate:"required"`
	Category         string     `validate:"max=100"`
	Goal             string     `validate:"max=2000"`
	DueDate          *time.Time
	ExperienceReward int        `validate:"gte=0"`
	Priority         int        `validate:"omitempty,gte=1,lte=4"`
}

// CreateSubtaskRequest mirrors CreateQuestRequest under a parent quest.
// Omitted category, reward and priority get display defaults on read.
type CreateSubtaskRequest struct {
	Name             string     `validate:"required"`
	Category         string     `validate:"max=100"`
	Goal             string     `validate:"max=2000"`
	DueDate          *time.Time
	ExperienceReward int        `validate:"gte=0"`
	Priority         int        `validate:"omitempty,gte=1,lte=4"`
}

// UpdateQuestRequest is a merge patch: nil fields stay untouched. Status is
// not patchable, it only moves through ChangeStatus.
type UpdateQuestRequest struct {
	Name             *string
	Category         *string
	Goal             *string
	DueDate          *time.Time
	ClearDueDate     bool
	ExperienceReward *int
	Priority         *int
	Progress         *int
}

type UpdateSubtaskRequest = UpdateQuestRequest

type QuestsServiceI interface {
	// Validates and persists a new quest with status=available, progress=0.
	// The returned quest, like every read, has derived fields computed
	// against now
	CreateQuest(ctx context.Context, uid uuid.UUID, req CreateQuestRequest, now time.Time) (*entity.Quest, error)
	// Refetches the user's full quest collection with subtasks nested and
	// derived fields recomputed against now
	Snapshot(ctx context.Context, uid uuid.UUID, now time.Time) ([]entity.Quest, error)
	// Merges a patch into a quest and re-validates invariants
	UpdateQuest(ctx context.Context, uid, questID uuid.UUID, patch UpdateQuestRequest, now time.Time) (*entity.Quest, error)
	// Deletes a quest and all owned subtasks. A second delete fails
	DeleteQuest(ctx context.Context, uid, questID uuid.UUID) error
	// Applies a status transition. Completing a quest awards its experience
	// and records streak activity; reverting never retracts the reward
	ChangeStatus(ctx context.Context, uid, questID uuid.UUID, newStatus entity.Status, now time.Time) (*entity.Quest, error)
	AddSubtask(ctx context.Context, uid, questID uuid.UUID, req CreateSubtaskRequest, now time.Time) (*entity.Subtask, error)
	UpdateSubtask(ctx context.Context, uid, questID, subtaskID uuid.UUID, patch UpdateSubtaskRequest, now time.Time) (*entity.Subtask, error)
	DeleteSubtask(ctx context.Context, uid, questID, subtaskID uuid.UUID) error
	ChangeSubtaskStatus(ctx context.Context, uid, questID, subtaskID uuid.UUID, newStatus entity.Status, now time.Time) (*entity.Subtask, error)
}

type ProgressionServiceI interface {
	// Reads the user's progression with the level derived from experience.
	// Users without a row yet get the zero progression
	Get(ctx context.Context, uid uuid.UUID) (*entity.UserProgression, error)
	// Adds experience and returns the refreshed progression
	AwardExperience(ctx context.Context, uid uuid.UUID, amount int) (*entity.UserProgression, error)
	// Applies one day of streak activity and returns the refreshed progression
	RecordActivity(ctx context.Context, uid uuid.UUID, today time.Time) (*entity.UserProgression, error)
}
