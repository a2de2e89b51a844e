package api

import "time"

type (
	// SubmitEventResponse is returned after event ingestion
	SubmitEventResponse struct {
		EventID    EventID       `json:"event_id"`
		Triggered  []ExecutionID `json:"triggered_workflow_ids"`
		Message    string        `json:"message,omitempty"`
		QueueDepth int           `json:"queue_depth,omitempty"`
	}

	// TriggerRegisteredResponse is returned when trigger registration
	// succeeds
	TriggerRegisteredResponse struct {
		ID      TriggerID `json:"id"`
		Message string    `json:"message"`
	}

	// WorkflowRegisteredResponse is returned when workflow registration
	// succeeds
	WorkflowRegisteredResponse struct {
		ID      WorkflowID `json:"id"`
		Message string     `json:"message"`
	}

	// ExecutionStatus summarizes one execution for query responses
	ExecutionStatus struct {
		ID              ExecutionID `json:"id"`
		WorkflowID      WorkflowID  `json:"workflow_id"`
		State           ExecState   `json:"state"`
		CurrentStep     StepID      `json:"current_step,omitempty"`
		StartedAt       time.Time   `json:"started_at,omitempty"`
		CompletedAt     time.Time   `json:"completed_at,omitempty"`
		Error           string      `json:"error,omitempty"`
		StepsLogged     int         `json:"steps_logged"`
		RetryCount      int         `json:"retry_count,omitempty"`
		EscalationCount int         `json:"escalation_count,omitempty"`
	}

	// ExecutionsListResponse contains a list of execution summaries
	ExecutionsListResponse struct {
		Executions []*ExecutionStatus `json:"executions"`
		Count      int                `json:"count"`
	}

	// TriggersListResponse contains registered triggers with statistics
	TriggersListResponse struct {
		Triggers []*Trigger `json:"triggers"`
		Count    int        `json:"count"`
	}

	// AlertsListResponse contains currently tracked alerts
	AlertsListResponse struct {
		Alerts []*Alert `json:"alerts"`
		Count  int      `json:"count"`
	}

	// AuditListResponse contains audit trail entries
	AuditListResponse struct {
		Entries []*AuditEntry `json:"entries"`
		Count   int           `json:"count"`
	}

	// CancelRequest carries the reason for an execution cancellation
	CancelRequest struct {
		Reason string `json:"reason,omitempty"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service          string `json:"service"`
		Version          string `json:"version"`
		Status           string `json:"status"`
		ActiveExecutions int    `json:"active_executions"`
		StoreConnected   bool   `json:"store_connected"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}

	// StreamEvent is the envelope published to websocket subscribers
	StreamEvent struct {
		Type        string      `json:"type"`
		ExecutionID ExecutionID `json:"execution_id,omitempty"`
		State       ExecState   `json:"state,omitempty"`
		StepID      StepID      `json:"step_id,omitempty"`
		Timestamp   int64       `json:"timestamp"`
		Data        any         `json:"data,omitempty"`
	}

	// StreamSubscription filters the websocket event stream
	StreamSubscription struct {
		Type        string      `json:"type"`
		ExecutionID ExecutionID `json:"execution_id,omitempty"`
		EventTypes  []string    `json:"event_types,omitempty"`
	}
)

// Status projects the execution into its query representation
func (x *WorkflowExecution) Status() *ExecutionStatus {
	return &ExecutionStatus{
		ID:              x.ID,
		WorkflowID:      x.WorkflowID,
		State:           x.State,
		CurrentStep:     x.CurrentStep,
		StartedAt:       x.StartedAt,
		CompletedAt:     x.CompletedAt,
		Error:           x.Error,
		StepsLogged:     len(x.StepHistory),
		RetryCount:      x.RetryCount,
		EscalationCount: x.EscalationCount,
	}
}
