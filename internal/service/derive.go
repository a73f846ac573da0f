package service

import (
	"time"

	"github.com/limbo/questlog/pkg/entity"
	"github.com/limbo/questlog/pkg/temporal"
)

// Derived fields and subtask display defaults are applied here, on the read
// path, and nowhere else. Every projection consumes the same decorated
// shapes, so the three views cannot drift.

func decorateQuest(q *entity.Quest, now time.Time) {
	q.DaysLeft = temporal.DaysLeft(q.DueDate, now)
	q.IsOverdue = temporal.IsOverdue(q.Status, q.DaysLeft)
	for i := range q.Subtasks {
		decorateSubtask(&q.Subtasks[i], q, now)
	}
}

func decorateSubtask(s *entity.Subtask, parent *entity.Quest, now time.Time) {
	s.ParentName = parent.Name
	if s.Category == "" {
		s.Category = entity.SubtaskCategory
	}
	if s.ExperienceReward == 0 {
		s.ExperienceReward = parent.ExperienceReward / 4
	}
	if s.Priority == 0 {
		s.Priority = 1
	}
	s.DaysLeft = temporal.DaysLeft(s.DueDate, now)
	s.IsOverdue = temporal.IsOverdue(s.Status, s.DaysLeft)
}

// assemble nests subtasks under their parents and decorates everything.
// Subtasks whose parent is missing from the quest list are dropped; they
// never outlive their parent.
func assemble(quests []*entity.Quest, subs []*entity.Subtask, now time.Time) []entity.Quest {
	result := make([]entity.Quest, 0, len(quests))
	byParent := make(map[string][]entity.Subtask, len(quests))
	for _, s := range subs {
		byParent[s.ParentID.String()] = append(byParent[s.ParentID.String()], *s)
	}
	for _, q := range quests {
		quest := *q
		quest.Subtasks = byParent[quest.ID.String()]
		if quest.Subtasks == nil {
			quest.Subtasks = []entity.Subtask{}
		}
		decorateQuest(&quest, now)
		result = append(result, quest)
	}
	return result
}
