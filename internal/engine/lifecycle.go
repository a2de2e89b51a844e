package engine

import (
	"fmt"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// PauseExecution suspends a running or waiting execution. Timers are
// suspended with it and rescheduled on resume.
func (e *Engine) PauseExecution(id api.ExecutionID) error {
	wa, err := e.actor(id)
	if err != nil {
		return err
	}
	state := wa.currentState()
	if state != api.ExecRunning && state != api.ExecWaiting &&
		state != api.ExecEscalated {
		return fmt.Errorf("%w: cannot pause from %s",
			ErrInvalidTransition, state)
	}
	wa.signal(actorSignal{kind: sigPause})
	return nil
}

// ResumeExecution returns a paused execution to the state it was paused
// from. A wait whose deadline passed while paused resumes immediately.
func (e *Engine) ResumeExecution(id api.ExecutionID) error {
	wa, err := e.actor(id)
	if err != nil {
		return err
	}
	if state := wa.currentState(); state != api.ExecPaused {
		return fmt.Errorf("%w: cannot resume from %s",
			ErrInvalidTransition, state)
	}
	wa.signal(actorSignal{kind: sigResumeReq})
	return nil
}

// CancelExecution terminates a non-terminal execution with the given
// reason. Cancellation is permanent.
func (e *Engine) CancelExecution(id api.ExecutionID, reason string) error {
	wa, err := e.actor(id)
	if err != nil {
		return err
	}
	if wa.currentState().IsTerminal() {
		return fmt.Errorf("%w: execution already %s",
			ErrInvalidTransition, wa.currentState())
	}
	wa.signal(actorSignal{kind: sigCancel, reason: reason})
	return nil
}

func (e *Engine) actor(id api.ExecutionID) (*execActor, error) {
	e.execMu.RLock()
	defer e.execMu.RUnlock()
	wa, ok := e.actors[id]
	if !ok {
		if _, done := e.finished[id]; done {
			return nil, fmt.Errorf("%w: execution %s is terminal",
				ErrInvalidTransition, id)
		}
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}
	return wa, nil
}
