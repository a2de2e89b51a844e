package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/util"
)

// RegisterWorkflow validates and stores a workflow definition. A
// definition with the same ID may be replaced only while no active
// execution references it.
func (e *Engine) RegisterWorkflow(def *api.WorkflowDefinition) error {
	if err := e.validateWorkflow(def); err != nil {
		return err
	}

	e.workflowMu.Lock()
	defer e.workflowMu.Unlock()

	if _, ok := e.workflows[def.ID]; ok && e.workflowInUse(def.ID) {
		return fmt.Errorf("%w: %s has active executions",
			ErrWorkflowExists, def.ID)
	}
	e.workflows[def.ID] = def

	slog.Info("Workflow registered",
		log.WorkflowID(def.ID),
		slog.String("name", def.Name),
		slog.Int("steps", len(def.Steps)))
	return nil
}

// GetWorkflow returns the registered definition for the given ID
func (e *Engine) GetWorkflow(
	id api.WorkflowID,
) (*api.WorkflowDefinition, error) {
	if def := e.lookupWorkflow(id); def != nil {
		return def, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
}

// ListWorkflows returns all registered definitions sorted by ID
func (e *Engine) ListWorkflows() []*api.WorkflowDefinition {
	e.workflowMu.RLock()
	defer e.workflowMu.RUnlock()

	res := make([]*api.WorkflowDefinition, 0, len(e.workflows))
	for _, def := range e.workflows {
		res = append(res, def)
	}
	slices.SortFunc(res, func(a, b *api.WorkflowDefinition) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return res
}

// RegisterTrigger validates a trigger against the registered workflows
// and stores it in the trigger registry
func (e *Engine) RegisterTrigger(tr *api.Trigger) (api.TriggerID, error) {
	return e.triggers.Register(tr)
}

func (e *Engine) workflowInUse(id api.WorkflowID) bool {
	e.execMu.RLock()
	defer e.execMu.RUnlock()
	for _, wa := range e.actors {
		if wa.workflowID() == id {
			return true
		}
	}
	return false
}

func (e *Engine) validateWorkflow(def *api.WorkflowDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("%w: workflow ID is required", api.ErrValidation)
	}
	if def.Name == "" {
		return fmt.Errorf("%w: workflow %q needs a name",
			api.ErrValidation, def.ID)
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("%w: workflow %q has no steps",
			api.ErrValidation, def.ID)
	}
	if def.TimeoutHours < 0 {
		return fmt.Errorf("%w: workflow %q has a negative timeout",
			api.ErrValidation, def.ID)
	}

	ids := util.Set[api.StepID]{}
	for i := range def.Steps {
		step := &def.Steps[i]
		if step.ID == "" {
			return fmt.Errorf("%w: workflow %q has a step with no ID",
				api.ErrValidation, def.ID)
		}
		if ids.Contains(step.ID) {
			return fmt.Errorf("%w: workflow %q repeats step %q",
				api.ErrValidation, def.ID, step.ID)
		}
		ids.Add(step.ID)
	}

	if def.InitialStep == "" || !ids.Contains(def.InitialStep) {
		return fmt.Errorf("%w: workflow %q initial step %q is not defined",
			api.ErrValidation, def.ID, def.InitialStep)
	}

	for i := range def.Steps {
		step := &def.Steps[i]
		for _, next := range step.NextSteps {
			if !ids.Contains(next) {
				return fmt.Errorf(
					"%w: workflow %q step %q references unknown step %q",
					api.ErrValidation, def.ID, step.ID, next)
			}
		}
		if step.TimeoutMinutes < 0 {
			return fmt.Errorf(
				"%w: workflow %q step %q has a negative timeout",
				api.ErrValidation, def.ID, step.ID)
		}
		for j := range step.Actions {
			call := &step.Actions[j]
			if err := e.actions.ValidateCall(call); err != nil {
				return fmt.Errorf("workflow %q step %q action %d: %w",
					def.ID, step.ID, j, err)
			}
		}
	}

	return validateEscalation(def)
}

// validateEscalation rejects escalation levels whose set_state could
// never be applied at runtime
func validateEscalation(def *api.WorkflowDefinition) error {
	if def.Escalation == nil {
		return nil
	}
	for i := range def.Escalation.Levels {
		lvl := &def.Escalation.Levels[i]
		switch lvl.SetState {
		case "", api.ExecEscalated, api.ExecCompleted, api.ExecFailed,
			api.ExecCancelled:
		default:
			return fmt.Errorf(
				"%w: workflow %q escalation level %d sets invalid state %q",
				api.ErrValidation, def.ID, lvl.Level, lvl.SetState)
		}
	}
	return nil
}
