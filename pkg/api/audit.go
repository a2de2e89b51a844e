package api

import "time"

type (
	// AuditKind classifies an audit trail entry
	AuditKind string

	// AuditEntry records one observable engine action for later diagnosis
	AuditEntry struct {
		ID          string      `json:"id"`
		Kind        AuditKind   `json:"kind"`
		ExecutionID ExecutionID `json:"execution_id,omitempty"`
		TriggerID   TriggerID   `json:"trigger_id,omitempty"`
		EventID     EventID     `json:"event_id,omitempty"`
		StepID      StepID      `json:"step_id,omitempty"`
		State       ExecState   `json:"state,omitempty"`
		Detail      string      `json:"detail,omitempty"`
		At          time.Time   `json:"at"`
	}

	// AuditFilter narrows audit trail queries
	AuditFilter struct {
		ExecutionID ExecutionID `json:"execution_id,omitempty"`
		Kind        AuditKind   `json:"kind,omitempty"`
		From        time.Time   `json:"from,omitempty"`
		To          time.Time   `json:"to,omitempty"`
		Limit       int         `json:"limit,omitempty"`
	}
)

const (
	AuditEventReceived    AuditKind = "event_received"
	AuditTriggerMatched   AuditKind = "trigger_matched"
	AuditExecutionStarted AuditKind = "execution_started"
	AuditStateChanged     AuditKind = "state_changed"
	AuditStepCompleted    AuditKind = "step_completed"
	AuditStepSkipped      AuditKind = "step_skipped"
	AuditEscalated        AuditKind = "escalated"
	AuditAlertRaised      AuditKind = "alert_raised"
	AuditEventRejected    AuditKind = "event_rejected"
)
