package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/action"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/trigger"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

type (
	stepOutcomeKind uint8

	escSignal struct {
		reason string
		target string
	}

	stepRun struct {
		kind        stepOutcomeKind
		next        api.StepID
		susp        *action.Suspension
		err         string
		escalations []escSignal
		results     []api.ActionResult
		started     time.Time
	}
)

const (
	stepDone stepOutcomeKind = iota
	stepSuspended
	stepFailed
)

// maxChainedSteps bounds how many steps one advance may chain through
// without suspending. Legitimate cycles re-enter through the scheduler;
// a chain this long is a definition defect.
const maxChainedSteps = 1000

// stepLoop drives the execution from its current step until it suspends,
// completes, fails, or an escalation changes its state. Iterative on
// purpose: cyclic definitions must not grow the call stack.
func (wa *execActor) stepLoop() {
	for range maxChainedSteps {
		if wa.currentState() != api.ExecRunning {
			return
		}

		stepID := wa.currentStep()
		step := wa.def.GetStep(stepID)
		if step == nil {
			wa.fail(fmt.Sprintf("step %q is not defined", stepID))
			return
		}

		if !wa.entryConditionsPass(step) {
			wa.logSkippedStep(step)
			if len(step.NextSteps) == 0 {
				wa.complete()
				return
			}
			wa.setCurrentStep(step.NextSteps[0])
			continue
		}

		run := wa.runStep(step)
		wa.appendLogEntry(step.ID, run.started, run.results, false)

		for _, esc := range run.escalations {
			if st := wa.escalate(esc.reason, esc.target); st != "" {
				return
			}
		}

		switch run.kind {
		case stepFailed:
			if wa.scheduleRetry(step, run.err) {
				return
			}
			wa.fail(run.err)
			return
		case stepSuspended:
			wa.suspend(step, run.susp)
			return
		case stepDone:
			wa.resetRetries()
			next := run.next
			if next == "" {
				if len(step.NextSteps) == 0 {
					wa.complete()
					return
				}
				next = step.NextSteps[0]
			}
			wa.setCurrentStep(next)
		}
	}
	wa.fail("step chain exceeded maximum length without suspending")
}

// runStep executes the step's actions in order and classifies the result.
// It performs no execution state changes itself.
func (wa *execActor) runStep(step *api.Step) stepRun {
	run := stepRun{kind: stepDone, started: wa.now()}
	ec := wa.execContext(step.ID)

	for i := range step.Actions {
		call := &step.Actions[i]
		res, err := wa.actions.Execute(wa.ctx, ec, call)
		if err != nil {
			run.results = append(run.results, api.ActionResult{
				Kind:  call.Kind,
				Error: err.Error(),
			})
			run.kind = stepFailed
			run.err = err.Error()
			return run
		}
		run.results = append(run.results, *res)

		if !res.Success {
			run.kind = stepFailed
			run.err = res.Error
			return run
		}
		if res.NextStep != "" {
			run.next = res.NextStep
		}

		switch call.Kind {
		case api.ActionWait:
			if susp := action.SuspensionFromResult(res); susp != nil {
				run.kind = stepSuspended
				run.susp = susp
				return run
			}
		case api.ActionEscalation:
			run.escalations = append(run.escalations, escSignal{
				reason: outputString(res.Output, "reason"),
				target: outputString(res.Output, "target"),
			})
		}
	}
	return run
}

// entryConditionsPass evaluates the step's entry conditions conjunctively
// against the execution context
func (wa *execActor) entryConditionsPass(step *api.Step) bool {
	if len(step.Conditions) == 0 {
		return true
	}

	wa.mu.RLock()
	payload := maps.Clone(wa.exec.Context)
	wa.mu.RUnlock()

	doc, err := trigger.NewPayloadDoc(payload)
	if err != nil {
		slog.Warn("Failed to index execution context",
			log.ExecutionID(wa.id()), log.Error(err))
		return false
	}

	now := wa.now()
	for i := range step.Conditions {
		if !trigger.EvalCondition(doc, &step.Conditions[i], now) {
			return false
		}
	}
	return true
}

// suspend parks the execution in waiting and schedules its re-entry
func (wa *execActor) suspend(step *api.Step, susp *action.Suspension) {
	wa.mu.Lock()
	wa.exec.ResumeAt = susp.ResumeAt
	wa.exec.AwaitEvent = susp.AwaitEvent
	wa.mu.Unlock()

	wa.setState(api.ExecWaiting, "")

	if !susp.ResumeAt.IsZero() {
		wa.scheduleResume(susp.ResumeAt)
	}
	if step.TimeoutMinutes > 0 {
		stepID := step.ID
		at := wa.now().Add(
			time.Duration(step.TimeoutMinutes) * time.Minute)
		wa.sched.Schedule(wa.ctx, stepTimeoutPath(wa.id()), at,
			func() error {
				wa.signal(actorSignal{
					kind:   sigStepTimeout,
					stepID: stepID,
				})
				return nil
			})
	}
}

// scheduleRetry parks the execution for a linear backoff re-run of the
// current step, if the step's retry policy still allows one
func (wa *execActor) scheduleRetry(step *api.Step, errMsg string) bool {
	if step.Retry == nil || step.Retry.MaxRetries <= 0 {
		return false
	}

	wa.mu.Lock()
	if wa.exec.RetryCount >= step.Retry.MaxRetries {
		wa.mu.Unlock()
		return false
	}
	wa.exec.RetryCount++
	attempt := wa.exec.RetryCount
	wa.mu.Unlock()

	backoff := time.Duration(step.Retry.BackoffSeconds) * time.Second
	if backoff <= 0 {
		backoff = time.Minute
	}
	at := wa.now().Add(backoff * time.Duration(attempt))

	wa.mu.Lock()
	wa.exec.ResumeAt = at
	wa.mu.Unlock()
	wa.setState(api.ExecWaiting,
		fmt.Sprintf("retry %d of %d", attempt, step.Retry.MaxRetries))

	wa.sched.Schedule(wa.ctx, retryPath(wa.id()), at, func() error {
		wa.signal(actorSignal{kind: sigRetry})
		return nil
	})

	slog.Warn("Step failed, retry scheduled",
		log.ExecutionID(wa.id()),
		log.StepID(step.ID),
		slog.Int("attempt", attempt),
		log.ErrorString(errMsg))
	return true
}

func (wa *execActor) resetRetries() {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	wa.exec.RetryCount = 0
}

// escalate raises the execution's escalation level and applies the
// workflow policy for it. Returns the state the policy set, or empty when
// the escalation stays a side channel.
func (wa *execActor) escalate(reason, target string) api.ExecState {
	wa.mu.Lock()
	wa.exec.EscalationCount++
	count := wa.exec.EscalationCount
	wa.mu.Unlock()

	var lvl *api.EscalationLevel
	if wa.def.Escalation != nil {
		lvl = wa.def.Escalation.Level(count)
	}
	if target == "" && lvl != nil {
		target = lvl.Target
	}

	wa.recordAudit(&api.AuditEntry{
		ID:          string(api.NewEventID()),
		Kind:        api.AuditEscalated,
		ExecutionID: wa.id(),
		StepID:      wa.currentStep(),
		Detail:      fmt.Sprintf("level %d: %s", count, reason),
	})
	wa.publish(&api.StreamEvent{
		Type:        "escalated",
		ExecutionID: wa.id(),
		State:       wa.currentState(),
		StepID:      wa.currentStep(),
		Data: api.Payload{
			"level":  count,
			"reason": reason,
			"target": target,
		},
	})
	slog.Warn("Execution escalated",
		log.ExecutionID(wa.id()),
		slog.Int("level", count),
		slog.String("reason", reason),
		slog.String("target", target))
	wa.notifyObserver(wa.snapshot())

	if lvl == nil || lvl.SetState == "" {
		return ""
	}
	if !wa.setState(lvl.SetState,
		fmt.Sprintf("escalation level %d", count)) {
		return ""
	}
	if lvl.SetState.IsTerminal() {
		wa.finish()
	}
	return lvl.SetState
}

func (wa *execActor) complete() {
	wa.setState(api.ExecCompleted, "")
	wa.finish()
}

func (wa *execActor) fail(msg string) {
	if wa.currentState().IsTerminal() {
		return
	}
	wa.mu.Lock()
	wa.exec.Error = msg
	wa.mu.Unlock()
	wa.setState(api.ExecFailed, msg)
	wa.finish()
}

func (wa *execActor) logSkippedStep(step *api.Step) {
	wa.appendLogEntry(step.ID, wa.now(), nil, true)
	slog.Debug("Step skipped by entry conditions",
		log.ExecutionID(wa.id()),
		log.StepID(step.ID))
}

// appendLogEntry records a write-once step history entry with the next
// monotonic sequence number
func (wa *execActor) appendLogEntry(
	stepID api.StepID, started time.Time, results []api.ActionResult,
	skipped bool,
) {
	wa.mu.Lock()
	entry := api.StepLogEntry{
		StepID:        stepID,
		Sequence:      len(wa.exec.StepHistory) + 1,
		StartedAt:     started,
		CompletedAt:   wa.now(),
		ActionResults: results,
		Skipped:       skipped,
	}
	wa.exec.StepHistory = append(wa.exec.StepHistory, entry)
	wa.mu.Unlock()

	kind := api.AuditStepCompleted
	if skipped {
		kind = api.AuditStepSkipped
	}
	wa.recordAudit(&api.AuditEntry{
		ID:          string(api.NewEventID()),
		Kind:        kind,
		ExecutionID: wa.id(),
		StepID:      stepID,
	})
	wa.publish(&api.StreamEvent{
		Type:        "step_completed",
		ExecutionID: wa.id(),
		StepID:      stepID,
	})
}

func (wa *execActor) execContext(stepID api.StepID) *action.ExecContext {
	wa.mu.RLock()
	defer wa.mu.RUnlock()
	return &action.ExecContext{
		ExecutionID: wa.exec.ID,
		WorkflowID:  wa.exec.WorkflowID,
		StepID:      stepID,
		SubjectID:   wa.exec.SubjectID,
		Context:     maps.Clone(wa.exec.Context),
		Now:         wa.now(),
	}
}

func outputString(p api.Payload, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}
