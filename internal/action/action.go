// Package action implements the pluggable units of work a step may invoke:
// message, wait, decision, and escalation. Actions register under a closed
// kind enum; unknown kinds are rejected when a workflow is registered,
// never at run time.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// ExecContext carries execution-scoped data into an action call
	ExecContext struct {
		ExecutionID api.ExecutionID
		WorkflowID  api.WorkflowID
		StepID      api.StepID
		SubjectID   api.SubjectID
		Context     api.Payload
		Now         time.Time
	}

	// Action is the capability contract every action kind implements
	Action interface {
		Kind() api.ActionKind
		Validate(params api.Payload) error
		Execute(
			ctx context.Context, ec *ExecContext, params api.Payload,
		) (*api.ActionResult, error)
	}

	// Registry is the capability-keyed action table
	Registry struct {
		actions map[api.ActionKind]Action
	}
)

// NewRegistry creates a registry holding the provided actions
func NewRegistry(actions ...Action) (*Registry, error) {
	r := &Registry{actions: map[api.ActionKind]Action{}}
	for _, a := range actions {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an action under its kind. Duplicate kinds are rejected.
func (r *Registry) Register(a Action) error {
	kind := a.Kind()
	if _, ok := r.actions[kind]; ok {
		return fmt.Errorf("%w: duplicate action kind %q",
			api.ErrValidation, kind)
	}
	r.actions[kind] = a
	return nil
}

// Get returns the action registered under the kind
func (r *Registry) Get(kind api.ActionKind) (Action, bool) {
	a, ok := r.actions[kind]
	return a, ok
}

// ValidateCall checks that the call's kind is registered and its params
// pass the action's own validation. Used at workflow registration time.
func (r *Registry) ValidateCall(call *api.ActionCall) error {
	a, ok := r.actions[call.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown action kind %q",
			api.ErrValidation, call.Kind)
	}
	return a.Validate(call.Params)
}

// Execute dispatches the call to its registered action
func (r *Registry) Execute(
	ctx context.Context, ec *ExecContext, call *api.ActionCall,
) (*api.ActionResult, error) {
	a, ok := r.actions[call.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action kind %q",
			api.ErrActionExecution, call.Kind)
	}
	return a.Execute(ctx, ec, call.Params)
}

func stringParam(params api.Payload, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func intParam(params api.Payload, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
