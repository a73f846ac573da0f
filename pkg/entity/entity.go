package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status is the quest/subtask lifecycle state. Transitions are user-triggered
// only; any valid status may move to any other valid status.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

// DefaultCategory is assigned to quests created without a category.
const DefaultCategory = "Other"

// SubtaskCategory is the display category for subtasks that carry none of
// their own.
const SubtaskCategory = "Subtask"

type Quest struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"uid"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Goal             string     `json:"goal"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	ExperienceReward int        `json:"xp_reward"`
	Priority         int        `json:"priority"`
	Status           Status     `json:"status"`
	Progress         int        `json:"progress"`
	Subtasks         []Subtask  `json:"subtasks"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Recomputed on every read from DueDate and the caller's "now",
	// never persisted.
	DaysLeft  *int `json:"days_left,omitempty"`
	IsOverdue bool `json:"is_overdue"`
}

// Subtask belongs to exactly one quest and never outlives it. ParentID and
// ParentName are display back-references; ownership lives with the parent.
type Subtask struct {
	ID               uuid.UUID  `json:"id"`
	ParentID         uuid.UUID  `json:"parent_id"`
	ParentName       string     `json:"parent_name"`
	UserID           uuid.UUID  `json:"uid"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Goal             string     `json:"goal"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	ExperienceReward int        `json:"xp_reward"`
	Priority         int        `json:"priority"`
	Status           Status     `json:"status"`
	Progress         int        `json:"progress"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	DaysLeft  *int `json:"days_left,omitempty"`
	IsOverdue bool `json:"is_overdue"`
}

// UserProgression is the gamification state of one user. Level is always
// derived from TotalExperience and is never stored.
type UserProgression struct {
	UserID           uuid.UUID  `json:"uid"`
	TotalExperience  int        `json:"total_xp"`
	Level            int        `json:"level"`
	StreakCount      int        `json:"streak_count"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}
