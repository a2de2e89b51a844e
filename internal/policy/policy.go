// Package policy implements the temporal and cultural gating predicates
// used by the trigger matcher and step condition checks. All predicates are
// pure over an injectable clock so they can be tested independent of wall
// time.
package policy

import (
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// Clock provides the current time for policy evaluation
type Clock func() time.Time

// Evaluator decides whether "now" falls inside a restricted window
type Evaluator struct {
	now Clock
}

// New creates an evaluator using the provided clock
func New(now Clock) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{now: now}
}

// Allows reports whether traffic with the given priority may proceed under
// the restrictions. Urgent and critical priorities bypass every gate when
// the restrictions permit it.
func (e *Evaluator) Allows(r *api.Restrictions, pri api.Priority) bool {
	if r == nil {
		return true
	}
	if r.AllowUrgentBypass && pri.IsUrgent() {
		return true
	}

	t := e.now()
	if r.QuietHours != nil && !InClockRange(*r.QuietHours, t) {
		return false
	}
	for _, b := range r.DailyBlackouts {
		if InClockRange(b, t) {
			return false
		}
	}
	for _, w := range r.WeeklyBlackouts {
		if InWeeklyBlackout(w, t) {
			return false
		}
	}
	for _, s := range r.SeasonalBlackouts {
		if InSeasonalBlackout(s, t) {
			return false
		}
	}
	return true
}

// InClockRange reports whether t falls inside the daily range. Ranges whose
// end precedes their start wrap past midnight. Invalid clock times never
// match.
func InClockRange(r api.ClockRange, t time.Time) bool {
	start := r.Start.Minutes()
	end := r.End.Minutes()
	if start < 0 || end < 0 {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	if start <= end {
		return m >= start && m < end
	}
	return m >= start || m < end
}

// InWeeklyBlackout reports whether t falls inside the weekday time range
func InWeeklyBlackout(w api.WeeklyBlackout, t time.Time) bool {
	if t.Weekday() != w.Weekday {
		return false
	}
	return InClockRange(w.Range, t)
}

// InSeasonalBlackout reports whether t falls inside the recurring calendar
// period. Periods whose end precedes their start wrap past year end.
func InSeasonalBlackout(s api.SeasonalBlackout, t time.Time) bool {
	cur := monthDay(t.Month(), t.Day())
	start := monthDay(s.StartMonth, s.StartDay)
	end := monthDay(s.EndMonth, s.EndDay)
	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}

func monthDay(m time.Month, d int) int {
	return int(m)*100 + d
}
