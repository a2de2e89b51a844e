package api

type (
	// ActionKind is the closed set of action capabilities a step may invoke
	ActionKind string

	// ActionCall invokes a registered action with its parameters
	ActionCall struct {
		Kind   ActionKind `json:"kind"`
		Params Payload    `json:"params,omitempty"`
	}

	// RetryPolicy bounds retries for a failing step
	RetryPolicy struct {
		MaxRetries     int `json:"max_retries"`
		BackoffSeconds int `json:"backoff_seconds,omitempty"`
	}

	// Step is a node in a workflow definition. Immutable once the
	// definition is registered.
	Step struct {
		ID             StepID       `json:"id"`
		Name           string       `json:"name,omitempty"`
		Actions        []ActionCall `json:"actions,omitempty"`
		Conditions     []Condition  `json:"conditions,omitempty"`
		NextSteps      []StepID     `json:"next_steps,omitempty"`
		TimeoutMinutes int          `json:"timeout_minutes,omitempty"`
		Retry          *RetryPolicy `json:"retry,omitempty"`
	}

	// EscalationLevel maps an escalation count to its handling. SetState
	// is empty unless the policy explicitly promotes the escalation into
	// a state change.
	EscalationLevel struct {
		Level    int       `json:"level"`
		Target   string    `json:"target,omitempty"`
		SetState ExecState `json:"set_state,omitempty"`
	}

	// EscalationPolicy governs what each escalation level does
	EscalationPolicy struct {
		Levels []EscalationLevel `json:"levels,omitempty"`
	}

	// WorkflowDefinition is an immutable graph of steps describing a
	// multi-step process, versioned by ID plus version string
	WorkflowDefinition struct {
		ID           WorkflowID        `json:"id"`
		Name         string            `json:"name"`
		Version      string            `json:"version,omitempty"`
		InitialStep  StepID            `json:"initial_step"`
		Steps        []Step            `json:"steps"`
		Variables    Payload           `json:"variables,omitempty"`
		TimeoutHours int               `json:"timeout_hours,omitempty"`
		Escalation   *EscalationPolicy `json:"escalation,omitempty"`
	}
)

const (
	ActionMessage    ActionKind = "message"
	ActionWait       ActionKind = "wait"
	ActionDecision   ActionKind = "decision"
	ActionEscalation ActionKind = "escalation"
)

// GetStep returns the step with the given ID, or nil when absent
func (d *WorkflowDefinition) GetStep(id StepID) *Step {
	for i := range d.Steps {
		if d.Steps[i].ID == id {
			return &d.Steps[i]
		}
	}
	return nil
}

// Level returns the escalation level entry for the given count, falling
// back to the highest defined level when the count exceeds the policy
func (p *EscalationPolicy) Level(count int) *EscalationLevel {
	if p == nil || len(p.Levels) == 0 {
		return nil
	}
	var best *EscalationLevel
	for i := range p.Levels {
		lvl := &p.Levels[i]
		if lvl.Level <= count && (best == nil || lvl.Level > best.Level) {
			best = lvl
		}
	}
	return best
}
