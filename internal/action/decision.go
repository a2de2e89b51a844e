package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/trigger"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// DecisionAction evaluates ordered cases against the execution
	// context and routes the execution to the first matching next step
	DecisionAction struct{}

	// DecisionCase pairs a condition with its routing outcome
	DecisionCase struct {
		Condition api.Condition `json:"condition"`
		Result    string        `json:"result,omitempty"`
		NextStep  api.StepID    `json:"next_step"`
	}
)

var _ Action = (*DecisionAction)(nil)

// Kind returns the decision action kind
func (a *DecisionAction) Kind() api.ActionKind {
	return api.ActionDecision
}

// Validate parses the case list and requires at least one case or a
// default next step
func (a *DecisionAction) Validate(params api.Payload) error {
	cases, err := decodeCases(params)
	if err != nil {
		return fmt.Errorf("%w: %w", api.ErrValidation, err)
	}
	if len(cases) == 0 && stringParam(params, "default") == "" {
		return fmt.Errorf(
			"%w: decision action requires cases or a default next step",
			api.ErrValidation)
	}
	for i := range cases {
		c := &cases[i].Condition
		if c.FieldPath == "" || c.Operator == "" {
			return fmt.Errorf(
				"%w: decision case %d needs field_path and operator",
				api.ErrValidation, i)
		}
	}
	return nil
}

// Execute returns the first matching case's next step, else the default
func (a *DecisionAction) Execute(
	_ context.Context, ec *ExecContext, params api.Payload,
) (*api.ActionResult, error) {
	cases, err := decodeCases(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrActionExecution, err)
	}

	doc, err := trigger.NewPayloadDoc(ec.Context)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrActionExecution, err)
	}

	for i := range cases {
		dc := &cases[i]
		if trigger.EvalCondition(doc, &dc.Condition, ec.Now) {
			return &api.ActionResult{
				Kind:     api.ActionDecision,
				Success:  true,
				NextStep: dc.NextStep,
				Output:   api.Payload{"result": dc.Result},
			}, nil
		}
	}

	return &api.ActionResult{
		Kind:     api.ActionDecision,
		Success:  true,
		NextStep: api.StepID(stringParam(params, "default")),
	}, nil
}

func decodeCases(params api.Payload) ([]DecisionCase, error) {
	raw, ok := params["cases"]
	if !ok {
		return nil, nil
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var cases []DecisionCase
	if err := json.Unmarshal(buf, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}
