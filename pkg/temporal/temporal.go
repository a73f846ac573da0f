// Package temporal holds the date arithmetic every view shares. "now" is
// always an explicit argument so callers stay testable; nothing here reads
// the wall clock.
package temporal

import (
	"math"
	"time"

	"github.com/limbo/questlog/pkg/entity"
)

// Band is the coarse urgency classification derived from days left. It is
// the single source of truth for urgency indication; views must not
// reimplement the thresholds.
type Band string

const (
	BandNone        Band = "none"
	BandOverdue     Band = "overdue"
	BandUrgent      Band = "urgent"
	BandSoon        Band = "soon"
	BandComfortable Band = "comfortable"
)

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysLeft returns the signed day distance from now to the due date, nil
// when there is no due date. Negative values carry the overdue magnitude.
func DaysLeft(due *time.Time, now time.Time) *int {
	if due == nil {
		return nil
	}
	d := int(math.Ceil(due.Sub(StartOfDay(now)).Hours() / 24))
	return &d
}

// IsOverdue reports whether an item with the given status is past due.
// Completed items are never overdue.
func IsOverdue(status entity.Status, daysLeft *int) bool {
	return status != entity.StatusCompleted && daysLeft != nil && *daysLeft < 0
}

// DisplayBucket formats a date for headers: "Today", "Tomorrow" or the
// formatted date. Time-of-day is ignored on both sides.
func DisplayBucket(date, now time.Time) string {
	switch {
	case SameDay(date, now):
		return "Today"
	case SameDay(date, now.AddDate(0, 0, 1)):
		return "Tomorrow"
	}
	return date.Format("Jan 2, 2006")
}

// Severity maps days left onto an urgency band.
func Severity(daysLeft *int) Band {
	switch {
	case daysLeft == nil:
		return BandNone
	case *daysLeft < 0:
		return BandOverdue
	case *daysLeft <= 2:
		return BandUrgent
	case *daysLeft <= 7:
		return BandSoon
	}
	return BandComfortable
}
