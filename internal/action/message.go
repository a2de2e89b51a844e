package action

import (
	"context"
	"fmt"
	"maps"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/comms"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// MessageAction renders a templated message and delegates transmission to
// the communication service, optionally screening content through the
// compliance checker first
type MessageAction struct {
	templates  *TemplateStore
	comm       comms.Communicator
	compliance comms.ComplianceChecker
}

var _ Action = (*MessageAction)(nil)

// NewMessageAction creates a message action. The compliance checker may be
// nil to skip content screening.
func NewMessageAction(
	templates *TemplateStore, comm comms.Communicator,
	compliance comms.ComplianceChecker,
) *MessageAction {
	return &MessageAction{
		templates:  templates,
		comm:       comm,
		compliance: compliance,
	}
}

// Kind returns the message action kind
func (a *MessageAction) Kind() api.ActionKind {
	return api.ActionMessage
}

// Validate checks that the call names a registered template and a channel
func (a *MessageAction) Validate(params api.Payload) error {
	id := stringParam(params, "template_id")
	if id == "" {
		return fmt.Errorf("%w: message action requires template_id",
			api.ErrValidation)
	}
	if _, ok := a.templates.Get(api.TemplateID(id)); !ok {
		return fmt.Errorf("%w: unknown template %q", api.ErrValidation, id)
	}
	if stringParam(params, "channel") == "" {
		return fmt.Errorf("%w: message action requires channel",
			api.ErrValidation)
	}
	return nil
}

// Execute renders the template against the execution context merged with
// call variables, screens it, and transmits it
func (a *MessageAction) Execute(
	ctx context.Context, ec *ExecContext, params api.Payload,
) (*api.ActionResult, error) {
	id := api.TemplateID(stringParam(params, "template_id"))
	channel := comms.Channel(stringParam(params, "channel"))

	vars := maps.Clone(ec.Context)
	if vars == nil {
		vars = api.Payload{}
	}
	if extra, ok := params["variables"].(map[string]any); ok {
		maps.Copy(vars, extra)
	}

	content, err := a.templates.Render(id, vars)
	if err != nil {
		return nil, err
	}

	if a.compliance != nil {
		check, err := a.compliance.Check(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", api.ErrActionExecution, err)
		}
		if check.Flagged {
			if check.Redacted == "" {
				return nil, fmt.Errorf("%w: template %q",
					api.ErrComplianceBlocked, id)
			}
			content = check.Redacted
		}
	}

	priority := api.Priority(stringParam(params, "priority"))
	if priority == "" {
		priority = api.PriorityNormal
	}

	delivery, err := a.comm.Send(ctx, channel, ec.SubjectID, content, priority)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrActionExecution, err)
	}

	return &api.ActionResult{
		Kind:    api.ActionMessage,
		Success: true,
		Output: api.Payload{
			"status":       delivery.Status,
			"provider_ref": delivery.ProviderRef,
			"channel":      string(channel),
		},
	}, nil
}
