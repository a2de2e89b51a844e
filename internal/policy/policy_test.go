package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/policy"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

func fixedClock(t time.Time) policy.Clock {
	return func() time.Time { return t }
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 4, hour, minute, 0, 0, time.UTC)
}

func TestQuietHoursWindow(t *testing.T) {
	r := &api.Restrictions{
		QuietHours: &api.ClockRange{Start: "07:00", End: "22:00"},
	}

	eval := policy.New(fixedClock(at(12, 30)))
	assert.True(t, eval.Allows(r, api.PriorityNormal))

	eval = policy.New(fixedClock(at(23, 15)))
	assert.False(t, eval.Allows(r, api.PriorityNormal))

	eval = policy.New(fixedClock(at(6, 59)))
	assert.False(t, eval.Allows(r, api.PriorityNormal))

	eval = policy.New(fixedClock(at(7, 0)))
	assert.True(t, eval.Allows(r, api.PriorityNormal))
}

func TestUrgentBypass(t *testing.T) {
	r := &api.Restrictions{
		QuietHours:        &api.ClockRange{Start: "07:00", End: "22:00"},
		AllowUrgentBypass: true,
	}

	eval := policy.New(fixedClock(at(3, 0)))
	assert.True(t, eval.Allows(r, api.PriorityUrgent))
	assert.True(t, eval.Allows(r, api.PriorityCritical))
	assert.False(t, eval.Allows(r, api.PriorityHigh))

	r.AllowUrgentBypass = false
	assert.False(t, eval.Allows(r, api.PriorityUrgent))
}

func TestDailyBlackouts(t *testing.T) {
	r := &api.Restrictions{
		DailyBlackouts: []api.ClockRange{
			{Start: "12:00", End: "13:30"},
			{Start: "18:00", End: "18:20"},
		},
	}

	assert.False(t, policy.New(fixedClock(at(12, 45))).
		Allows(r, api.PriorityNormal))
	assert.False(t, policy.New(fixedClock(at(18, 5))).
		Allows(r, api.PriorityNormal))
	assert.True(t, policy.New(fixedClock(at(13, 30))).
		Allows(r, api.PriorityNormal))
	assert.True(t, policy.New(fixedClock(at(9, 0))).
		Allows(r, api.PriorityNormal))
}

func TestClockRangeWrapsMidnight(t *testing.T) {
	r := api.ClockRange{Start: "22:00", End: "06:00"}

	assert.True(t, policy.InClockRange(r, at(23, 0)))
	assert.True(t, policy.InClockRange(r, at(2, 0)))
	assert.False(t, policy.InClockRange(r, at(12, 0)))
	assert.False(t, policy.InClockRange(r, at(6, 0)))
}

func TestInvalidClockTimesNeverMatch(t *testing.T) {
	r := api.ClockRange{Start: "7:00", End: "25:00"}
	assert.False(t, policy.InClockRange(r, at(12, 0)))
}

func TestWeeklyBlackout(t *testing.T) {
	w := api.WeeklyBlackout{
		Weekday: time.Friday,
		Range:   api.ClockRange{Start: "11:30", End: "13:30"},
	}

	friday := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
	assert.True(t, policy.InWeeklyBlackout(w, friday))

	saturday := friday.AddDate(0, 0, 1)
	assert.False(t, policy.InWeeklyBlackout(w, saturday))

	fridayEvening := time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC)
	assert.False(t, policy.InWeeklyBlackout(w, fridayEvening))
}

func TestSeasonalBlackout(t *testing.T) {
	s := api.SeasonalBlackout{
		Name:       "ramadan",
		StartMonth: time.February,
		StartDay:   17,
		EndMonth:   time.March,
		EndDay:     19,
	}

	assert.True(t, policy.InSeasonalBlackout(
		s, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, policy.InSeasonalBlackout(
		s, time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)))
	assert.True(t, policy.InSeasonalBlackout(
		s, time.Date(2026, 3, 19, 23, 0, 0, 0, time.UTC)))
	assert.False(t, policy.InSeasonalBlackout(
		s, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)))
	assert.False(t, policy.InSeasonalBlackout(
		s, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSeasonalBlackoutWrapsYearEnd(t *testing.T) {
	s := api.SeasonalBlackout{
		StartMonth: time.December,
		StartDay:   20,
		EndMonth:   time.January,
		EndDay:     5,
	}

	assert.True(t, policy.InSeasonalBlackout(
		s, time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.True(t, policy.InSeasonalBlackout(
		s, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)))
	assert.False(t, policy.InSeasonalBlackout(
		s, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNilRestrictionsAllow(t *testing.T) {
	eval := policy.New(fixedClock(at(3, 0)))
	assert.True(t, eval.Allows(nil, api.PriorityLow))
}
