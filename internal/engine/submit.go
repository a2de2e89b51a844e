package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

// Submit ingests a domain event: it evaluates the trigger registry,
// starts an execution for every firing trigger, and wakes any executions
// awaiting this event type. Trigger evaluation is synchronous so the
// response can name the executions it started.
func (e *Engine) Submit(
	_ context.Context, ev *api.Event,
) (*api.SubmitEventResponse, error) {
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: event type is required",
			api.ErrValidation)
	}
	if ev.ID == "" {
		ev.ID = api.NewEventID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now()
	}

	e.recordAudit(&api.AuditEntry{
		ID:      string(api.NewEventID()),
		Kind:    api.AuditEventReceived,
		EventID: ev.ID,
		Detail:  string(ev.Type),
	})

	var started []api.ExecutionID
	var rejected int
	for _, tr := range e.triggers.Evaluate(ev) {
		e.recordAudit(&api.AuditEntry{
			ID:        string(api.NewEventID()),
			Kind:      api.AuditTriggerMatched,
			EventID:   ev.ID,
			TriggerID: tr.ID,
		})

		id, err := e.startFromTrigger(tr, ev)
		if err != nil {
			rejected++
			e.recordAudit(&api.AuditEntry{
				ID:        string(api.NewEventID()),
				Kind:      api.AuditEventRejected,
				EventID:   ev.ID,
				TriggerID: tr.ID,
				Detail:    err.Error(),
			})
			slog.Warn("Trigger fired but execution was not started",
				log.TriggerID(tr.ID),
				log.EventID(ev.ID),
				log.Error(err))
			continue
		}
		started = append(started, id)
	}

	// Wake executions awaiting this event type
	e.sendIngress(ev)
	ev.Processed = true

	res := &api.SubmitEventResponse{
		EventID:   ev.ID,
		Triggered: started,
	}
	if rejected > 0 {
		res.Message = fmt.Sprintf(
			"%d matched trigger(s) rejected by concurrency limit", rejected)
	}
	return res, nil
}

// StartWorkflow begins a new execution of the given workflow definition
// outside the trigger path
func (e *Engine) StartWorkflow(
	workflowID api.WorkflowID, subjectID api.SubjectID, init api.Payload,
) (api.ExecutionID, error) {
	return e.startExecution(workflowID, "", subjectID, init)
}

func (e *Engine) startFromTrigger(
	tr *api.Trigger, ev *api.Event,
) (api.ExecutionID, error) {
	execCtx := api.Payload{
		"event_type": string(ev.Type),
		"event_id":   string(ev.ID),
		"subject_id": string(ev.SubjectID),
	}
	for k, v := range ev.Payload {
		execCtx[k] = v
	}
	return e.startExecution(tr.WorkflowID, tr.ID, ev.SubjectID, execCtx)
}

func (e *Engine) startExecution(
	workflowID api.WorkflowID, triggerID api.TriggerID,
	subjectID api.SubjectID, init api.Payload,
) (api.ExecutionID, error) {
	def := e.lookupWorkflow(workflowID)
	if def == nil {
		return "", fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}

	// Reserve the slot atomically so concurrent starts cannot slip past
	// the cap between check and increment
	for {
		active := e.active.Load()
		if int(active) >= e.cfg.MaxConcurrentWorkflows {
			return "", fmt.Errorf("%w: %d in flight",
				api.ErrConcurrencyLimit, active)
		}
		if e.active.CompareAndSwap(active, active+1) {
			break
		}
	}

	execCtx := api.Payload{}
	for k, v := range def.Variables {
		execCtx[k] = v
	}
	for k, v := range init {
		execCtx[k] = v
	}

	exec := &api.WorkflowExecution{
		ID:          api.NewExecutionID(),
		WorkflowID:  workflowID,
		TriggerID:   triggerID,
		SubjectID:   subjectID,
		Context:     execCtx,
		CurrentStep: def.InitialStep,
		State:       api.ExecPending,
		StartedAt:   e.now(),
	}

	wa := &execActor{
		Engine:  e,
		def:     def,
		exec:    exec,
		signals: make(chan actorSignal, 100),
	}

	e.execMu.Lock()
	e.actors[exec.ID] = wa
	e.execMu.Unlock()

	e.wg.Add(1)
	go wa.run()

	if def.TimeoutHours > 0 {
		at := exec.StartedAt.Add(flowTimeout(def))
		e.sched.Schedule(e.ctx, flowTimeoutPath(exec.ID), at,
			func() error {
				wa.signal(actorSignal{kind: sigFlowTimeout})
				return nil
			})
	}

	e.recordAudit(&api.AuditEntry{
		ID:          string(api.NewEventID()),
		Kind:        api.AuditExecutionStarted,
		ExecutionID: exec.ID,
		TriggerID:   triggerID,
	})
	e.publish(&api.StreamEvent{
		Type:        "execution_started",
		ExecutionID: exec.ID,
		State:       api.ExecPending,
	})

	slog.Info("Execution started",
		log.ExecutionID(exec.ID),
		log.WorkflowID(workflowID),
		log.TriggerID(triggerID))

	wa.signal(actorSignal{kind: sigAdvance})
	return exec.ID, nil
}
