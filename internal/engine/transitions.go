package engine

import (
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/util"
)

// StateTransitions maps states to their set of valid next states
type StateTransitions[T comparable] map[T]util.Set[T]

// execTransitions validates every execution state change. Completed,
// failed, and cancelled are terminal.
var execTransitions = StateTransitions[api.ExecState]{
	api.ExecPending: util.SetOf(
		api.ExecRunning,
		api.ExecFailed,
		api.ExecCancelled,
	),
	api.ExecRunning: util.SetOf(
		api.ExecWaiting,
		api.ExecPaused,
		api.ExecEscalated,
		api.ExecCompleted,
		api.ExecFailed,
		api.ExecCancelled,
	),
	api.ExecWaiting: util.SetOf(
		api.ExecRunning,
		api.ExecPaused,
		api.ExecEscalated,
		api.ExecCompleted,
		api.ExecFailed,
		api.ExecCancelled,
	),
	api.ExecPaused: util.SetOf(
		api.ExecRunning,
		api.ExecWaiting,
		api.ExecFailed,
		api.ExecCancelled,
	),
	api.ExecEscalated: util.SetOf(
		api.ExecRunning,
		api.ExecWaiting,
		api.ExecCompleted,
		api.ExecFailed,
		api.ExecCancelled,
	),
	api.ExecCompleted: {},
	api.ExecFailed:    {},
	api.ExecCancelled: {},
}

// CanTransition returns whether transition from one state to another is valid
func (t StateTransitions[T]) CanTransition(from, to T) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	return allowed.Contains(to)
}

// IsTerminal returns true if the state has no valid transitions
func (t StateTransitions[T]) IsTerminal(state T) bool {
	allowed, ok := t[state]
	return ok && allowed.IsEmpty()
}
