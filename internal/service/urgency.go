package service

import (
	"time"

	"github.com/lexcase/caseflow/internal/clock"
	"github.com/lexcase/caseflow/internal/model"
)

// LookaheadDays is how far ahead the reminder passes look. The window runs
// from the start of today through the end of day today+LookaheadDays.
const LookaheadDays = 7

// Classify maps the number of days until an event to a priority.
// Zero and negative values are urgent. Low is never returned.
func Classify(daysUntil int) model.Priority {
	switch {
	case daysUntil <= 1:
		return model.PriorityUrgent
	case daysUntil <= 3:
		return model.PriorityHigh
	default:
		return model.PriorityMedium
	}
}

// DaysUntil counts calendar days from now to event in loc, ignoring the
// time of day. An event later today is 0 days away.
func DaysUntil(now, event time.Time, loc *time.Location) int {
	a := utcDate(clock.StartOfDay(now, loc))
	b := utcDate(clock.StartOfDay(event, loc))
	return int(b.Sub(a).Hours() / 24)
}

// utcDate re-anchors a calendar date in UTC so DST shifts in the local
// zone never produce a 23 or 25 hour day.
func utcDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReminderWindow returns the half-open scan window [from, to) for now.
func ReminderWindow(now time.Time, loc *time.Location) (from, to time.Time) {
	from = clock.StartOfDay(now, loc)
	to = from.AddDate(0, 0, LookaheadDays+1)
	return from, to
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
