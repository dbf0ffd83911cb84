package exam

import (
	"time"

	"github.com/eduvio/examdesk/internal/model"
)

// WindowStatus classifies an exam's availability at a point in time.
type WindowStatus string

const (
	WindowNotScheduled WindowStatus = "NOT_SCHEDULED"
	WindowNotOpenYet   WindowStatus = "NOT_OPEN_YET"
	WindowOpen         WindowStatus = "OPEN"
	WindowClosed       WindowStatus = "CLOSED"
)

// EndTime returns the moment the exam stops accepting takes:
// open time plus duration plus the grace buffer. It depends only on the
// exam's own fields, so every student sees the same deadline. The second
// return is false when the exam has no open time scheduled.
func EndTime(e *model.Exam) (time.Time, bool) {
	if e.OpenTime == nil {
		return time.Time{}, false
	}
	d := time.Duration(e.DurationMinutes+e.BufferMinutes) * time.Minute
	return e.OpenTime.Add(d), true
}

// Window evaluates the exam's availability at now. Boundaries are
// inclusive on both ends: a take at exactly the open time or exactly the
// end time is inside the window.
func Window(e *model.Exam, now time.Time) WindowStatus {
	end, ok := EndTime(e)
	if !ok {
		return WindowNotScheduled
	}
	if now.Before(*e.OpenTime) {
		return WindowNotOpenYet
	}
	if now.After(end) {
		return WindowClosed
	}
	return WindowOpen
}

// RemainingSeconds returns how many whole seconds are left in the window
// at now, clamped at zero.
func RemainingSeconds(e *model.Exam, now time.Time) int64 {
	end, ok := EndTime(e)
	if !ok || now.After(end) {
		return 0
	}
	return int64(end.Sub(now) / time.Second)
}
