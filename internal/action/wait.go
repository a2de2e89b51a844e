package action

import (
	"context"
	"fmt"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// WaitAction suspends an execution for a fixed duration, until an
	// external response event arrives, or until a timeout elapses. It
	// never blocks: the result carries a suspension that the engine
	// schedules, freeing the worker in the interim.
	WaitAction struct{}

	// Suspension describes how a waiting execution resumes
	Suspension struct {
		ResumeAt   time.Time
		AwaitEvent api.EventType
	}
)

var _ Action = (*WaitAction)(nil)

// Kind returns the wait action kind
func (a *WaitAction) Kind() api.ActionKind {
	return api.ActionWait
}

// Validate requires a duration, an awaited event, or both (the duration
// then acting as the await timeout)
func (a *WaitAction) Validate(params api.Payload) error {
	minutes := intParam(params, "duration_minutes")
	await := stringParam(params, "await_event")
	if minutes <= 0 && await == "" {
		return fmt.Errorf(
			"%w: wait action requires duration_minutes or await_event",
			api.ErrValidation)
	}
	if minutes < 0 {
		return fmt.Errorf("%w: wait duration must be positive",
			api.ErrValidation)
	}
	return nil
}

// Execute returns a suspension result; the engine transitions the
// execution to waiting and schedules re-entry
func (a *WaitAction) Execute(
	_ context.Context, ec *ExecContext, params api.Payload,
) (*api.ActionResult, error) {
	out := api.Payload{}
	if minutes := intParam(params, "duration_minutes"); minutes > 0 {
		resumeAt := ec.Now.Add(time.Duration(minutes) * time.Minute)
		out["resume_at"] = resumeAt.Format(time.RFC3339)
	}
	if await := stringParam(params, "await_event"); await != "" {
		out["await_event"] = await
	}
	return &api.ActionResult{
		Kind:    api.ActionWait,
		Success: true,
		Output:  out,
	}, nil
}

// SuspensionFromResult extracts the suspension from a wait result, or nil
// when the result does not suspend
func SuspensionFromResult(res *api.ActionResult) *Suspension {
	if res == nil || res.Kind != api.ActionWait || res.Output == nil {
		return nil
	}
	var s Suspension
	if raw, ok := res.Output["resume_at"].(string); ok {
		if at, err := time.Parse(time.RFC3339, raw); err == nil {
			s.ResumeAt = at
		}
	}
	if raw, ok := res.Output["await_event"].(string); ok {
		s.AwaitEvent = api.EventType(raw)
	}
	if s.ResumeAt.IsZero() && s.AwaitEvent == "" {
		return nil
	}
	return &s
}
