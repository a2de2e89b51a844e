package engine

import (
	"fmt"
	"slices"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// ExecutionFilter narrows ListExecutions results
type ExecutionFilter struct {
	State      api.ExecState
	WorkflowID api.WorkflowID
	SubjectID  api.SubjectID
}

// GetExecution returns a snapshot of the execution with the given ID,
// active or terminal
func (e *Engine) GetExecution(
	id api.ExecutionID,
) (*api.WorkflowExecution, error) {
	e.execMu.RLock()
	wa, active := e.actors[id]
	final, done := e.finished[id]
	e.execMu.RUnlock()

	if active {
		return wa.snapshot(), nil
	}
	if done {
		return final.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
}

// ListExecutions returns snapshots of all known executions matching the
// filter, newest first
func (e *Engine) ListExecutions(
	filter *ExecutionFilter,
) []*api.WorkflowExecution {
	e.execMu.RLock()
	res := make([]*api.WorkflowExecution, 0,
		len(e.actors)+len(e.finished))
	for _, wa := range e.actors {
		res = append(res, wa.snapshot())
	}
	for _, final := range e.finished {
		res = append(res, final.Clone())
	}
	e.execMu.RUnlock()

	if filter != nil {
		res = slices.DeleteFunc(res, func(x *api.WorkflowExecution) bool {
			if filter.State != "" && x.State != filter.State {
				return true
			}
			if filter.WorkflowID != "" &&
				x.WorkflowID != filter.WorkflowID {
				return true
			}
			return filter.SubjectID != "" && x.SubjectID != filter.SubjectID
		})
	}

	slices.SortFunc(res, func(a, b *api.WorkflowExecution) int {
		switch {
		case a.StartedAt.After(b.StartedAt):
			return -1
		case a.StartedAt.Before(b.StartedAt):
			return 1
		default:
			return 0
		}
	})
	return res
}

// ListActive returns snapshots of the non-terminal executions
func (e *Engine) ListActive() []*api.WorkflowExecution {
	e.execMu.RLock()
	defer e.execMu.RUnlock()

	res := make([]*api.WorkflowExecution, 0, len(e.actors))
	for _, wa := range e.actors {
		res = append(res, wa.snapshot())
	}
	return res
}
