package api

import "time"

type (
	// TriggerStatus represents the lifecycle state of a trigger
	TriggerStatus string

	// Trigger is a registered rule set that starts a workflow execution
	// when matched by an inbound event. Configuration is immutable after
	// registration; only statistics mutate, and only via the matcher.
	Trigger struct {
		ID              TriggerID     `json:"id"`
		Name            string        `json:"name"`
		Description     string        `json:"description,omitempty"`
		EventTypes      []EventType   `json:"event_types"`
		EventSources    []EventSource `json:"event_sources,omitempty"`
		Rules           []Rule        `json:"rules"`
		WorkflowID      WorkflowID    `json:"workflow_id"`
		CooldownMinutes int           `json:"cooldown_minutes,omitempty"`
		MaxPerHour      int           `json:"max_per_hour,omitempty"`
		MaxPerDay       int           `json:"max_per_day,omitempty"`
		Restrictions    *Restrictions `json:"restrictions,omitempty"`
		Status          TriggerStatus `json:"status"`
	}

	// TriggerStats tracks match statistics for a trigger. Counters roll
	// over when the hour or day window containing their start elapses.
	TriggerStats struct {
		LastTriggered time.Time `json:"last_triggered,omitempty"`
		TotalMatches  int64     `json:"total_matches"`
		HourCount     int       `json:"hour_count"`
		HourStart     time.Time `json:"hour_start,omitempty"`
		DayCount      int       `json:"day_count"`
		DayStart      time.Time `json:"day_start,omitempty"`
	}
)

const (
	TriggerActive    TriggerStatus = "active"
	TriggerInactive  TriggerStatus = "inactive"
	TriggerSuspended TriggerStatus = "suspended"
	TriggerTesting   TriggerStatus = "testing"
)
