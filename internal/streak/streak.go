// Package streak computes the consecutive-day activity counter. The pure
// transition lives here; persistence of the resulting state is the
// progression service's job.
package streak

import (
	"time"

	"github.com/limbo/questlog/pkg/temporal"
)

// State is the running streak: Count is the length of the current unbroken
// run of consecutive calendar days with activity, ending at LastActivity.
type State struct {
	Count        int
	LastActivity *time.Time
}

// RecordActivity applies one day of activity. Recording the same day twice
// is a no-op, the day after the last activity extends the run, anything
// else starts a fresh run of one.
func RecordActivity(s State, today time.Time) State {
	day := temporal.StartOfDay(today)
	if s.LastActivity != nil {
		if temporal.SameDay(*s.LastActivity, day) {
			return s
		}
		if temporal.SameDay(s.LastActivity.AddDate(0, 0, 1), day) {
			return State{Count: s.Count + 1, LastActivity: &day}
		}
	}
	return State{Count: 1, LastActivity: &day}
}

// Reset returns the empty streak.
func Reset() State {
	return State{}
}
