package api

import (
	"maps"
	"slices"
	"time"
)

type (
	// ExecState represents the current state of a workflow execution
	ExecState string

	// ActionResult is the outcome of a single action invocation
	ActionResult struct {
		Kind     ActionKind `json:"kind"`
		Success  bool       `json:"success"`
		Output   Payload    `json:"output,omitempty"`
		Error    string     `json:"error,omitempty"`
		NextStep StepID     `json:"next_step,omitempty"`
	}

	// StepLogEntry records one step execution. Entries are write-once and
	// appended in completion order; Sequence positions never repeat.
	StepLogEntry struct {
		StepID        StepID         `json:"step_id"`
		Sequence      int            `json:"sequence"`
		StartedAt     time.Time      `json:"started_at"`
		CompletedAt   time.Time      `json:"completed_at,omitempty"`
		ActionResults []ActionResult `json:"action_results,omitempty"`
		Skipped       bool           `json:"skipped,omitempty"`
	}

	// WorkflowExecution is a runtime instance of a workflow definition.
	// Mutated only by the execution engine; terminal once the state is
	// completed, failed, or cancelled.
	WorkflowExecution struct {
		ID              ExecutionID    `json:"id"`
		WorkflowID      WorkflowID     `json:"workflow_id"`
		TriggerID       TriggerID      `json:"trigger_id,omitempty"`
		SubjectID       SubjectID      `json:"subject_id,omitempty"`
		Context         Payload        `json:"context,omitempty"`
		CurrentStep     StepID         `json:"current_step,omitempty"`
		State           ExecState      `json:"state"`
		StartedAt       time.Time      `json:"started_at,omitempty"`
		CompletedAt     time.Time      `json:"completed_at,omitempty"`
		Error           string         `json:"error,omitempty"`
		StepHistory     []StepLogEntry `json:"step_history,omitempty"`
		RetryCount      int            `json:"retry_count,omitempty"`
		EscalationCount int            `json:"escalation_count,omitempty"`
		ResumeAt        time.Time      `json:"resume_at,omitempty"`
		AwaitEvent      EventType      `json:"await_event,omitempty"`
	}
)

const (
	ExecPending   ExecState = "pending"
	ExecRunning   ExecState = "running"
	ExecWaiting   ExecState = "waiting"
	ExecPaused    ExecState = "paused"
	ExecEscalated ExecState = "escalated"
	ExecCompleted ExecState = "completed"
	ExecFailed    ExecState = "failed"
	ExecCancelled ExecState = "cancelled"
)

// IsTerminal reports whether the state admits no further transitions
func (s ExecState) IsTerminal() bool {
	return s == ExecCompleted || s == ExecFailed || s == ExecCancelled
}

// Clone returns a deep-enough copy of the execution for safe snapshotting
// outside the owning actor
func (x *WorkflowExecution) Clone() *WorkflowExecution {
	res := *x
	res.Context = maps.Clone(x.Context)
	res.StepHistory = slices.Clone(x.StepHistory)
	return &res
}

// Duration returns the wall time between start and completion, or zero
// when either timestamp is unset
func (x *WorkflowExecution) Duration() time.Duration {
	if x.StartedAt.IsZero() || x.CompletedAt.IsZero() {
		return 0
	}
	return x.CompletedAt.Sub(x.StartedAt)
}
