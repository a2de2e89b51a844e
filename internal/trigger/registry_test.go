package trigger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/trigger"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type movableClock struct {
	now time.Time
}

func (c *movableClock) Now() time.Time {
	return c.now
}

func (c *movableClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newPatientTrigger() *api.Trigger {
	return &api.Trigger{
		Name:       "new patient welcome",
		EventTypes: []api.EventType{api.EventAppointmentScheduled},
		Rules: []api.Rule{{
			Operator: api.LogicalAnd,
			Conditions: []api.Condition{{
				FieldPath: "is_new_patient",
				Operator:  api.OpEquals,
				Value:     true,
			}},
		}},
		WorkflowID: "welcome-flow",
	}
}

func scheduledEvent(payload api.Payload) *api.Event {
	return &api.Event{
		ID:        api.NewEventID(),
		Type:      api.EventAppointmentScheduled,
		Source:    api.SourceAPI,
		Timestamp: testNow,
		SubjectID: "patient-42",
		Priority:  api.PriorityNormal,
		Payload:   payload,
	}
}

func newRegistry(clock *movableClock) *trigger.Registry {
	return trigger.NewRegistry(clock.Now, func(
		id api.WorkflowID,
	) *api.WorkflowDefinition {
		if id == "welcome-flow" {
			return &api.WorkflowDefinition{ID: id}
		}
		return nil
	})
}

func TestRegisterValidation(t *testing.T) {
	reg := newRegistry(&movableClock{now: testNow})

	cases := []struct {
		name   string
		mutate func(*api.Trigger)
	}{
		{"empty name", func(tr *api.Trigger) { tr.Name = "" }},
		{"no event types", func(tr *api.Trigger) { tr.EventTypes = nil }},
		{"no rules", func(tr *api.Trigger) { tr.Rules = nil }},
		{"rule without conditions", func(tr *api.Trigger) {
			tr.Rules = []api.Rule{{Operator: api.LogicalAnd}}
		}},
		{"condition without field path", func(tr *api.Trigger) {
			tr.Rules[0].Conditions[0].FieldPath = ""
		}},
		{"condition without operator", func(tr *api.Trigger) {
			tr.Rules[0].Conditions[0].Operator = ""
		}},
		{"unknown workflow", func(tr *api.Trigger) {
			tr.WorkflowID = "missing-flow"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := newPatientTrigger()
			tc.mutate(tr)
			_, err := reg.Register(tr)
			assert.ErrorIs(t, err, api.ErrValidation)
		})
	}
}

func TestRegisterInitializesStats(t *testing.T) {
	reg := newRegistry(&movableClock{now: testNow})

	id, err := reg.Register(newPatientTrigger())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	st, ok := reg.Stats(id)
	require.True(t, ok)
	assert.Zero(t, st.TotalMatches)
	assert.True(t, st.LastTriggered.IsZero())

	tr, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, api.TriggerActive, tr.Status)
}

func TestEvaluateMatchesNewPatient(t *testing.T) {
	clock := &movableClock{now: testNow}
	reg := newRegistry(clock)
	id, err := reg.Register(newPatientTrigger())
	require.NoError(t, err)

	matched := reg.Evaluate(scheduledEvent(api.Payload{
		"is_new_patient": true,
	}))
	require.Len(t, matched, 1)
	assert.Equal(t, id, matched[0].ID)

	st, _ := reg.Stats(id)
	assert.Equal(t, int64(1), st.TotalMatches)
	assert.Equal(t, clock.now, st.LastTriggered)

	matched = reg.Evaluate(scheduledEvent(api.Payload{
		"is_new_patient": false,
	}))
	assert.Empty(t, matched)
}

func TestEvaluateFiltersEventType(t *testing.T) {
	reg := newRegistry(&movableClock{now: testNow})
	_, err := reg.Register(newPatientTrigger())
	require.NoError(t, err)

	ev := scheduledEvent(api.Payload{"is_new_patient": true})
	ev.Type = api.EventLabResultReady
	assert.Empty(t, reg.Evaluate(ev))
}

func TestEvaluateFiltersEventSource(t *testing.T) {
	reg := newRegistry(&movableClock{now: testNow})
	tr := newPatientTrigger()
	tr.EventSources = []api.EventSource{api.SourceScheduler}
	_, err := reg.Register(tr)
	require.NoError(t, err)

	ev := scheduledEvent(api.Payload{"is_new_patient": true})
	assert.Empty(t, reg.Evaluate(ev))

	ev.Source = api.SourceScheduler
	assert.Len(t, reg.Evaluate(ev), 1)
}

func TestEvaluateSkipsInactiveTriggers(t *testing.T) {
	reg := newRegistry(&movableClock{now: testNow})
	id, err := reg.Register(newPatientTrigger())
	require.NoError(t, err)

	require.True(t, reg.SetStatus(id, api.TriggerSuspended))
	ev := scheduledEvent(api.Payload{"is_new_patient": true})
	assert.Empty(t, reg.Evaluate(ev))

	require.True(t, reg.SetStatus(id, api.TriggerTesting))
	assert.Len(t, reg.Evaluate(ev), 1)
}

func TestCooldown(t *testing.T) {
	clock := &movableClock{now: testNow}
	reg := newRegistry(clock)
	tr := newPatientTrigger()
	tr.CooldownMinutes = 10
	_, err := reg.Register(tr)
	require.NoError(t, err)

	ev := scheduledEvent(api.Payload{"is_new_patient": true})
	assert.Len(t, reg.Evaluate(ev), 1)

	// a second qualifying event 5 minutes later stays inside the cooldown
	clock.Advance(5 * time.Minute)
	assert.Empty(t, reg.Evaluate(ev))

	// 15 minutes after the first match the cooldown has elapsed
	clock.Advance(10 * time.Minute)
	assert.Len(t, reg.Evaluate(ev), 1)
}

func TestHourlyRateLimit(t *testing.T) {
	clock := &movableClock{now: testNow}
	reg := newRegistry(clock)
	tr := newPatientTrigger()
	tr.MaxPerHour = 2
	_, err := reg.Register(tr)
	require.NoError(t, err)

	ev := scheduledEvent(api.Payload{"is_new_patient": true})
	assert.Len(t, reg.Evaluate(ev), 1)
	clock.Advance(time.Minute)
	assert.Len(t, reg.Evaluate(ev), 1)
	clock.Advance(time.Minute)
	assert.Empty(t, reg.Evaluate(ev))

	// budget resets once the hour window rolls over
	clock.Advance(time.Hour)
	assert.Len(t, reg.Evaluate(ev), 1)
}

func TestDailyRateLimit(t *testing.T) {
	clock := &movableClock{now: testNow}
	reg := newRegistry(clock)
	tr := newPatientTrigger()
	tr.MaxPerDay = 1
	_, err := reg.Register(tr)
	require.NoError(t, err)

	ev := scheduledEvent(api.Payload{"is_new_patient": true})
	assert.Len(t, reg.Evaluate(ev), 1)
	clock.Advance(2 * time.Hour)
	assert.Empty(t, reg.Evaluate(ev))

	clock.Advance(23 * time.Hour)
	assert.Len(t, reg.Evaluate(ev), 1)
}

func TestQuietHoursBlockMatching(t *testing.T) {
	night := time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC)
	clock := &movableClock{now: night}
	reg := newRegistry(clock)
	tr := newPatientTrigger()
	tr.Restrictions = &api.Restrictions{
		QuietHours:        &api.ClockRange{Start: "07:00", End: "22:00"},
		AllowUrgentBypass: true,
	}
	_, err := reg.Register(tr)
	require.NoError(t, err)

	ev := scheduledEvent(api.Payload{"is_new_patient": true})
	assert.Empty(t, reg.Evaluate(ev))

	ev.Priority = api.PriorityUrgent
	assert.Len(t, reg.Evaluate(ev), 1)
}

func TestMultipleRulesAreConjunctive(t *testing.T) {
	reg := newRegistry(&movableClock{now: testNow})
	tr := newPatientTrigger()
	tr.Rules = append(tr.Rules, api.Rule{
		Operator: api.LogicalAnd,
		Conditions: []api.Condition{{
			FieldPath: "clinic",
			Operator:  api.OpEquals,
			Value:     "cardiology",
		}},
	})
	_, err := reg.Register(tr)
	require.NoError(t, err)

	assert.Empty(t, reg.Evaluate(scheduledEvent(api.Payload{
		"is_new_patient": true,
	})))
	assert.Len(t, reg.Evaluate(scheduledEvent(api.Payload{
		"is_new_patient": true,
		"clinic":         "cardiology",
	})), 1)
}
