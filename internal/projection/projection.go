// Package projection derives the board, list and calendar shapes from one
// decorated quest snapshot. Projections only filter, sort and group; status
// comes from the store and urgency from pkg/temporal, nothing is recomputed
// here.
package projection

import (
	"sort"
	"strings"
	"time"

	"github.com/limbo/questlog/pkg/entity"
	"github.com/limbo/questlog/pkg/temporal"
)

const dateKeyLayout = "2006-01-02"

// Board partitions quests, and independently the flattened subtasks, by
// status. Subtask display defaults are already applied by the store read
// path, so both collections render uniformly.
type Board struct {
	Quests   map[entity.Status][]entity.Quest   `json:"quests"`
	Subtasks map[entity.Status][]entity.Subtask `json:"subtasks"`
}

func ProjectBoard(quests []entity.Quest) Board {
	b := Board{
		Quests:   map[entity.Status][]entity.Quest{},
		Subtasks: map[entity.Status][]entity.Subtask{},
	}
	for _, st := range []entity.Status{entity.StatusAvailable, entity.StatusOngoing, entity.StatusCompleted} {
		b.Quests[st] = []entity.Quest{}
		b.Subtasks[st] = []entity.Subtask{}
	}
	for _, q := range quests {
		b.Quests[q.Status] = append(b.Quests[q.Status], q)
		for _, sub := range q.Subtasks {
			b.Subtasks[sub.Status] = append(b.Subtasks[sub.Status], sub)
		}
	}
	return b
}

type SortKey string

const (
	SortDueDate  SortKey = "due_date"
	SortPriority SortKey = "priority"
	SortReward   SortKey = "xp"
	SortName     SortKey = "name"
)

// StatusFilterAll matches every status in the list projection.
const StatusFilterAll = "all"

type ListOptions struct {
	Status string
	Search string
	Sort   SortKey
}

// ListItem is one expandable row: a quest with its subtasks grouped under
// it, plus the urgency band the presentation renders.
type ListItem struct {
	Quest    entity.Quest     `json:"quest"`
	Subtasks []entity.Subtask `json:"subtasks"`
	Severity temporal.Band    `json:"severity"`
}

// ProjectList filters, sorts and groups the snapshot for the list view.
// Sorting is stable; ties keep the snapshot order.
func ProjectList(quests []entity.Quest, opts ListOptions) []ListItem {
	items := make([]ListItem, 0, len(quests))
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	for _, q := range quests {
		if opts.Status != "" && opts.Status != StatusFilterAll && string(q.Status) != opts.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(q.Name), search) &&
			!strings.Contains(strings.ToLower(q.Category), search) {
			continue
		}
		items = append(items, ListItem{
			Quest:    q,
			Subtasks: q.Subtasks,
			Severity: temporal.Severity(q.DaysLeft),
		})
	}
	sortItems(items, opts.Sort)
	return items
}

func sortItems(items []ListItem, key SortKey) {
	switch key {
	case SortDueDate:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].Quest.DueDate, items[j].Quest.DueDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case SortPriority:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Quest.Priority > items[j].Quest.Priority
		})
	case SortReward:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Quest.ExperienceReward > items[j].Quest.ExperienceReward
		})
	case SortName:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Quest.Name) < strings.ToLower(items[j].Quest.Name)
		})
	}
}

// CalendarCell is one dated bucket of the calendar view.
type CalendarCell struct {
	Date          time.Time        `json:"date"`
	Day           int              `json:"day"`
	IsToday       bool             `json:"is_today"`
	InViewedMonth bool             `json:"in_viewed_month"`
	Quests        []entity.Quest   `json:"quests"`
	Subtasks      []entity.Subtask `json:"subtasks"`
}

// ProjectCalendar buckets quests and subtasks by their due date, keyed by
// ISO date. Items without a due date are deliberately omitted, not an
// error. viewedMonth is any date inside the displayed month.
func ProjectCalendar(quests []entity.Quest, viewedMonth, now time.Time) map[string]CalendarCell {
	cells := map[string]CalendarCell{}
	for _, q := range quests {
		if q.DueDate != nil {
			cell := fetchCell(cells, *q.DueDate, viewedMonth, now)
			cell.Quests = append(cell.Quests, q)
			cells[q.DueDate.Format(dateKeyLayout)] = cell
		}
		for _, sub := range q.Subtasks {
			if sub.DueDate == nil {
				continue
			}
			cell := fetchCell(cells, *sub.DueDate, viewedMonth, now)
			cell.Subtasks = append(cell.Subtasks, sub)
			cells[sub.DueDate.Format(dateKeyLayout)] = cell
		}
	}
	return cells
}

func fetchCell(cells map[string]CalendarCell, date, viewedMonth, now time.Time) CalendarCell {
	key := date.Format(dateKeyLayout)
	if cell, ok := cells[key]; ok {
		return cell
	}
	return CalendarCell{
		Date:          temporal.StartOfDay(date),
		Day:           date.Day(),
		IsToday:       temporal.SameDay(date, now),
		InViewedMonth: date.Year() == viewedMonth.Year() && date.Month() == viewedMonth.Month(),
	}
}
