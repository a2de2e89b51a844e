package api

import "time"

type (
	// EventType classifies a domain event
	EventType string

	// EventSource identifies the subsystem that produced an event
	EventSource string

	// Priority ranks events and outbound messages for delivery ordering
	// and restriction bypass
	Priority string

	// Payload carries the free-form data attached to events, step actions,
	// and execution contexts
	Payload map[string]any

	// Event is an immutable domain event submitted to the engine. The
	// Processed flag is set exactly once by the dispatcher.
	Event struct {
		ID            EventID     `json:"id"`
		Type          EventType   `json:"type"`
		Source        EventSource `json:"source"`
		Timestamp     time.Time   `json:"timestamp"`
		SubjectID     SubjectID   `json:"subject_id"`
		Priority      Priority    `json:"priority"`
		Payload       Payload     `json:"payload,omitempty"`
		CorrelationID string      `json:"correlation_id,omitempty"`
		Processed     bool        `json:"processed,omitempty"`
	}
)

const (
	EventAppointmentScheduled EventType = "appointment_scheduled"
	EventAppointmentCancelled EventType = "appointment_cancelled"
	EventAppointmentCompleted EventType = "appointment_completed"
	EventAppointmentNoShow    EventType = "appointment_no_show"
	EventMessageReceived      EventType = "message_received"
	EventMedicationRefillDue  EventType = "medication_refill_due"
	EventLabResultReady       EventType = "lab_result_ready"
	EventCarePlanUpdated      EventType = "care_plan_updated"
	EventTimerFired           EventType = "timer_fired"
)

const (
	SourceAPI       EventSource = "api"
	SourceScheduler EventSource = "scheduler"
	SourceClinical  EventSource = "clinical"
	SourceMessaging EventSource = "messaging"
	SourceSystem    EventSource = "system"
)

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityUrgent   Priority = "urgent"
	PriorityCritical Priority = "critical"
)

// IsUrgent reports whether the priority qualifies for restriction bypass
func (p Priority) IsUrgent() bool {
	return p == PriorityUrgent || p == PriorityCritical
}
