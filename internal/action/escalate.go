package action

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

// EscalationAction records an escalation signal. It never changes
// execution state by itself; any state effect is applied by the engine
// according to the workflow's escalation policy.
type EscalationAction struct{}

var _ Action = (*EscalationAction)(nil)

// Kind returns the escalation action kind
func (a *EscalationAction) Kind() api.ActionKind {
	return api.ActionEscalation
}

// Validate requires an escalation reason
func (a *EscalationAction) Validate(params api.Payload) error {
	if stringParam(params, "reason") == "" {
		return fmt.Errorf("%w: escalation action requires a reason",
			api.ErrValidation)
	}
	return nil
}

// Execute records the escalation and reports success
func (a *EscalationAction) Execute(
	_ context.Context, ec *ExecContext, params api.Payload,
) (*api.ActionResult, error) {
	reason := stringParam(params, "reason")
	level := intParam(params, "level")
	target := stringParam(params, "target")

	slog.Info("Escalation recorded",
		log.ExecutionID(ec.ExecutionID),
		log.StepID(ec.StepID),
		slog.Int("level", level),
		slog.String("reason", reason),
		slog.String("target", target))

	return &api.ActionResult{
		Kind:    api.ActionEscalation,
		Success: true,
		Output: api.Payload{
			"reason": reason,
			"level":  level,
			"target": target,
		},
	}, nil
}
