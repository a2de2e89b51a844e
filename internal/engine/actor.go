package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

type (
	signalKind uint8

	actorSignal struct {
		kind   signalKind
		event  *api.Event
		stepID api.StepID
		reason string
	}

	// execActor owns one execution. All mutation happens on the actor
	// goroutine; snapshot readers take the actor lock.
	execActor struct {
		*Engine
		def        *api.WorkflowDefinition
		mu         sync.RWMutex
		exec       *api.WorkflowExecution
		priorState api.ExecState
		signals    chan actorSignal
	}
)

const (
	sigAdvance signalKind = iota
	sigResume
	sigRetry
	sigEvent
	sigPause
	sigResumeReq
	sigCancel
	sigStepTimeout
	sigFlowTimeout
)

func (wa *execActor) run() {
	defer wa.wg.Done()

	for {
		select {
		case <-wa.ctx.Done():
			return
		case sig := <-wa.signals:
			wa.handle(sig)
			if wa.currentState().IsTerminal() {
				return
			}
		}
	}
}

func (wa *execActor) handle(sig actorSignal) {
	switch sig.kind {
	case sigAdvance:
		if wa.currentState() == api.ExecPending {
			wa.setState(api.ExecRunning, "")
			wa.stepLoop()
		}
	case sigResume:
		wa.handleWaitElapsed(sig.stepID)
	case sigRetry:
		if wa.currentState() == api.ExecWaiting {
			wa.clearWait()
			wa.setState(api.ExecRunning, "")
			wa.stepLoop()
		}
	case sigEvent:
		wa.handleAwaitedEvent(sig.event)
	case sigPause:
		wa.handlePause()
	case sigResumeReq:
		wa.handleResume()
	case sigCancel:
		wa.handleCancel(sig.reason)
	case sigStepTimeout:
		wa.handleStepTimeout(sig.stepID)
	case sigFlowTimeout:
		wa.fail("workflow timed out")
	}
}

// handleWaitElapsed fires when a wait's resume timer elapses. Stale
// timers for already-departed steps are ignored.
func (wa *execActor) handleWaitElapsed(stepID api.StepID) {
	if wa.currentState() != api.ExecWaiting {
		return
	}
	if stepID != "" && stepID != wa.currentStep() {
		return
	}
	wa.clearWait()
	wa.setState(api.ExecRunning, "")
	wa.departStep()
}

// handleAwaitedEvent resumes a waiting execution when its awaited event
// arrives, merging the event payload into the execution context
func (wa *execActor) handleAwaitedEvent(ev *api.Event) {
	if !wa.awaiting(ev) {
		return
	}

	wa.mu.Lock()
	for k, v := range ev.Payload {
		wa.exec.Context[k] = v
	}
	wa.exec.Context["response_event_id"] = string(ev.ID)
	wa.exec.Context["response_received_at"] = ev.Timestamp.UnixMilli()
	wa.mu.Unlock()

	wa.sched.Cancel(wa.ctx, resumePath(wa.id()))
	wa.sched.Cancel(wa.ctx, stepTimeoutPath(wa.id()))
	wa.clearWait()
	wa.setState(api.ExecRunning, "")
	wa.departStep()
}

// departStep advances past the just-finished wait step and continues
func (wa *execActor) departStep() {
	step := wa.def.GetStep(wa.currentStep())
	if step == nil || len(step.NextSteps) == 0 {
		wa.complete()
		return
	}
	wa.setCurrentStep(step.NextSteps[0])
	wa.stepLoop()
}

func (wa *execActor) handlePause() {
	state := wa.currentState()
	if state != api.ExecWaiting && state != api.ExecRunning &&
		state != api.ExecEscalated {
		return
	}

	wa.mu.Lock()
	wa.priorState = state
	wa.mu.Unlock()

	// Suspend pending timers; resume reschedules what still applies
	wa.sched.Cancel(wa.ctx, resumePath(wa.id()))
	wa.sched.Cancel(wa.ctx, stepTimeoutPath(wa.id()))
	wa.sched.Cancel(wa.ctx, retryPath(wa.id()))

	wa.setState(api.ExecPaused, "")
}

func (wa *execActor) handleResume() {
	if wa.currentState() != api.ExecPaused {
		return
	}

	wa.mu.RLock()
	prior := wa.priorState
	resumeAt := wa.exec.ResumeAt
	awaitEvent := wa.exec.AwaitEvent
	wa.mu.RUnlock()

	if prior == api.ExecWaiting && (awaitEvent != "" || !resumeAt.IsZero()) {
		if !resumeAt.IsZero() && !resumeAt.After(wa.now()) {
			// Wait elapsed while paused
			wa.clearWait()
			wa.setState(api.ExecRunning, "")
			wa.departStep()
			return
		}
		wa.setState(api.ExecWaiting, "")
		if !resumeAt.IsZero() {
			wa.scheduleResume(resumeAt)
		}
		return
	}

	wa.setState(api.ExecRunning, "")
	wa.stepLoop()
}

func (wa *execActor) handleCancel(reason string) {
	if wa.currentState().IsTerminal() {
		return
	}
	wa.mu.Lock()
	if reason != "" {
		wa.exec.Error = "cancelled: " + reason
	}
	wa.mu.Unlock()
	wa.setState(api.ExecCancelled, "")
	wa.finish()
}

// handleStepTimeout escalates a waiting step that outlived its timeout
func (wa *execActor) handleStepTimeout(stepID api.StepID) {
	state := wa.currentState()
	if state != api.ExecWaiting || stepID != wa.currentStep() {
		return
	}
	wa.escalate("step timed out", "")
}

func (wa *execActor) signal(sig actorSignal) {
	select {
	case wa.signals <- sig:
	case <-wa.ctx.Done():
	}
}

func (wa *execActor) awaiting(ev *api.Event) bool {
	wa.mu.RLock()
	defer wa.mu.RUnlock()
	if wa.exec.State != api.ExecWaiting || wa.exec.AwaitEvent != ev.Type {
		return false
	}
	return wa.exec.SubjectID == "" || wa.exec.SubjectID == ev.SubjectID
}

func (wa *execActor) snapshot() *api.WorkflowExecution {
	wa.mu.RLock()
	defer wa.mu.RUnlock()
	return wa.exec.Clone()
}

func (wa *execActor) id() api.ExecutionID {
	return wa.exec.ID
}

func (wa *execActor) workflowID() api.WorkflowID {
	return wa.exec.WorkflowID
}

func (wa *execActor) currentState() api.ExecState {
	wa.mu.RLock()
	defer wa.mu.RUnlock()
	return wa.exec.State
}

func (wa *execActor) currentStep() api.StepID {
	wa.mu.RLock()
	defer wa.mu.RUnlock()
	return wa.exec.CurrentStep
}

func (wa *execActor) setCurrentStep(id api.StepID) {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	wa.exec.CurrentStep = id
}

func (wa *execActor) clearWait() {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	wa.exec.ResumeAt = time.Time{}
	wa.exec.AwaitEvent = ""
}

// setState applies a validated transition and fans the change out to the
// audit trail, stream hub, and observer. Reports whether the transition
// was applied; callers that finish an execution must not do so on a
// rejected change.
func (wa *execActor) setState(to api.ExecState, detail string) bool {
	wa.mu.Lock()
	from := wa.exec.State
	if from == to {
		wa.mu.Unlock()
		return false
	}
	if !execTransitions.CanTransition(from, to) {
		wa.mu.Unlock()
		slog.Error("Rejected execution state transition",
			log.ExecutionID(wa.exec.ID),
			slog.String("from", string(from)),
			slog.String("to", string(to)))
		return false
	}
	wa.exec.State = to
	if to.IsTerminal() {
		wa.exec.CompletedAt = wa.now()
	}
	wa.mu.Unlock()

	wa.recordAudit(&api.AuditEntry{
		ID:          string(api.NewEventID()),
		Kind:        api.AuditStateChanged,
		ExecutionID: wa.id(),
		State:       to,
		Detail:      detail,
	})
	wa.publish(&api.StreamEvent{
		Type:        "state_changed",
		ExecutionID: wa.id(),
		State:       to,
		StepID:      wa.currentStep(),
	})
	wa.notifyObserver(wa.snapshot())
	return true
}

func (wa *execActor) scheduleResume(at time.Time) {
	stepID := wa.currentStep()
	wa.sched.Schedule(wa.ctx, resumePath(wa.id()), at, func() error {
		wa.signal(actorSignal{kind: sigResume, stepID: stepID})
		return nil
	})
}

// finish removes a terminal execution from the active set, retains its
// final snapshot for queries, and hands it to the archive
func (wa *execActor) finish() {
	final := wa.snapshot()

	wa.execMu.Lock()
	delete(wa.actors, final.ID)
	wa.finished[final.ID] = final
	wa.execMu.Unlock()
	wa.active.Add(-1)

	wa.sched.CancelPrefix(wa.ctx, execPath(final.ID))

	if wa.archive != nil {
		ctx, cancel := context.WithTimeout(
			context.Background(), 10*time.Second)
		defer cancel()
		if err := wa.archive.PutExecution(ctx, final); err != nil {
			slog.Warn("Failed to archive terminal execution",
				log.ExecutionID(final.ID), log.Error(err))
		}
	}

	slog.Info("Execution finished",
		log.ExecutionID(final.ID),
		log.WorkflowID(final.WorkflowID),
		log.State(final.State),
		slog.Duration("duration", final.Duration()))
}

func execPath(id api.ExecutionID) []string {
	return []string{"exec", string(id)}
}

func resumePath(id api.ExecutionID) []string {
	return append(execPath(id), "resume")
}

func retryPath(id api.ExecutionID) []string {
	return append(execPath(id), "retry")
}

func stepTimeoutPath(id api.ExecutionID) []string {
	return append(execPath(id), "step-timeout")
}

func flowTimeoutPath(id api.ExecutionID) []string {
	return append(execPath(id), "flow-timeout")
}

func flowTimeout(def *api.WorkflowDefinition) time.Duration {
	return time.Duration(def.TimeoutHours) * time.Hour
}
