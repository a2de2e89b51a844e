package engine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/action"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/comms"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/config"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/engine"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/engine/scheduler"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	testEnv struct {
		eng   *engine.Engine
		comm  *comms.FakeCommunicator
		timer *fakeTimer
		now   time.Time
	}

	testTimerConstructor struct {
		created chan *fakeTimer
	}

	fakeTimer struct {
		ch      chan time.Time
		resets  chan time.Duration
		stops   chan struct{}
		stopped atomic.Bool
	}
)

const waitTimeout = 2 * time.Second

var testStart = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T, mod func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.ShutdownTimeout = time.Second
	if mod != nil {
		mod(cfg)
	}

	templates := action.NewTemplateStore()
	require.NoError(t, templates.Register(&action.Template{
		ID:       "reminder",
		Body:     "Hi {{patient_name}}",
		Required: []string{"patient_name"},
	}))

	comm := &comms.FakeCommunicator{}
	actions, err := action.NewRegistry(
		action.NewMessageAction(templates, comm, nil),
		&action.WaitAction{},
		&action.DecisionAction{},
		&action.EscalationAction{},
	)
	require.NoError(t, err)

	tc := &testTimerConstructor{created: make(chan *fakeTimer, 1)}
	eng := engine.New(engine.Dependencies{
		Config:           cfg,
		Actions:          actions,
		Clock:            func() time.Time { return testStart },
		TimerConstructor: tc.NewTimer,
	})
	eng.Start()
	t.Cleanup(func() { _ = eng.Stop() })

	timer := tc.WaitTimer(t)
	timer.DrainStops()

	return &testEnv{eng: eng, comm: comm, timer: timer, now: testStart}
}

func (env *testEnv) registerMessageWorkflow(
	t *testing.T, id api.WorkflowID,
) {
	t.Helper()
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          id,
		Name:        "Send reminder",
		InitialStep: "send",
		Steps: []api.Step{{
			ID:   "send",
			Name: "Send reminder",
			Actions: []api.ActionCall{{
				Kind: api.ActionMessage,
				Params: api.Payload{
					"template_id": "reminder",
					"channel":     "sms",
				},
			}},
		}},
	}))
}

func (env *testEnv) registerTrigger(
	t *testing.T, workflowID api.WorkflowID,
) api.TriggerID {
	t.Helper()
	id, err := env.eng.RegisterTrigger(&api.Trigger{
		Name:       "new patient welcome",
		EventTypes: []api.EventType{api.EventAppointmentScheduled},
		Rules: []api.Rule{{
			Conditions: []api.Condition{{
				FieldPath: "is_new_patient",
				Operator:  api.OpEquals,
				Value:     true,
			}},
		}},
		WorkflowID: workflowID,
	})
	require.NoError(t, err)
	return id
}

func newPatientEvent() *api.Event {
	return &api.Event{
		Type:      api.EventAppointmentScheduled,
		Source:    api.SourceAPI,
		SubjectID: "patient-42",
		Payload: api.Payload{
			"is_new_patient": true,
			"patient_name":   "Fatima",
		},
	}
}

func waitForState(
	t *testing.T, eng *engine.Engine, id api.ExecutionID,
	want api.ExecState,
) *api.WorkflowExecution {
	t.Helper()
	require.Eventually(t, func() bool {
		x, err := eng.GetExecution(id)
		return err == nil && x.State == want
	}, waitTimeout, 5*time.Millisecond,
		"execution did not reach state %s", want)

	x, err := eng.GetExecution(id)
	require.NoError(t, err)
	return x
}

func TestTriggerToCompletion(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerMessageWorkflow(t, "welcome")
	env.registerTrigger(t, "welcome")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	require.Len(t, res.Triggered, 1)
	assert.NotEmpty(t, res.EventID)

	x := waitForState(t, env.eng, res.Triggered[0], api.ExecCompleted)
	assert.False(t, x.CompletedAt.IsZero())
	require.Len(t, x.StepHistory, 1)
	assert.Equal(t, api.StepID("send"), x.StepHistory[0].StepID)
	assert.Equal(t, 1, x.StepHistory[0].Sequence)
	require.Len(t, x.StepHistory[0].ActionResults, 1)
	assert.True(t, x.StepHistory[0].ActionResults[0].Success)

	sent := env.comm.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Hi Fatima", sent[0].Content)
}

func TestNonMatchingEventStartsNothing(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerMessageWorkflow(t, "welcome")
	env.registerTrigger(t, "welcome")

	ev := newPatientEvent()
	ev.Payload["is_new_patient"] = false
	res, err := env.eng.Submit(context.Background(), ev)
	require.NoError(t, err)
	assert.Empty(t, res.Triggered)
	assert.Equal(t, 0, env.eng.ActiveCount())
}

func TestEntryConditionSkipsStep(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "conditional",
		Name:        "Conditional flow",
		InitialStep: "maybe-send",
		Steps: []api.Step{
			{
				ID: "maybe-send",
				Conditions: []api.Condition{{
					FieldPath: "wants_messages",
					Operator:  api.OpEquals,
					Value:     true,
				}},
				Actions: []api.ActionCall{{
					Kind: api.ActionMessage,
					Params: api.Payload{
						"template_id": "reminder",
						"channel":     "sms",
					},
				}},
				NextSteps: []api.StepID{"finish"},
			},
			{ID: "finish"},
		},
	}))
	env.registerTrigger(t, "conditional")

	ev := newPatientEvent()
	ev.Payload["wants_messages"] = false
	res, err := env.eng.Submit(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, res.Triggered, 1)

	x := waitForState(t, env.eng, res.Triggered[0], api.ExecCompleted)
	require.Len(t, x.StepHistory, 2)
	assert.True(t, x.StepHistory[0].Skipped)
	assert.Equal(t, 1, x.StepHistory[0].Sequence)
	assert.Equal(t, 2, x.StepHistory[1].Sequence)
	assert.Empty(t, env.comm.Sent())
}

func TestActionFailureWithoutRetryFails(t *testing.T) {
	env := newTestEnv(t, nil)
	env.comm.Err = comms.ErrSendFailed
	env.registerMessageWorkflow(t, "welcome")
	env.registerTrigger(t, "welcome")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	require.Len(t, res.Triggered, 1)

	x := waitForState(t, env.eng, res.Triggered[0], api.ExecFailed)
	assert.NotEmpty(t, x.Error)
	assert.Zero(t, x.RetryCount)
}

func TestRetryPolicyExhaustion(t *testing.T) {
	env := newTestEnv(t, nil)
	env.comm.Err = comms.ErrSendFailed
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "retrying",
		Name:        "Retrying flow",
		InitialStep: "send",
		Steps: []api.Step{{
			ID: "send",
			Actions: []api.ActionCall{{
				Kind: api.ActionMessage,
				Params: api.Payload{
					"template_id": "reminder",
					"channel":     "sms",
				},
			}},
			Retry: &api.RetryPolicy{MaxRetries: 1, BackoffSeconds: 30},
		}},
	}))
	env.registerTrigger(t, "retrying")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	require.Len(t, res.Triggered, 1)
	id := res.Triggered[0]

	x := waitForState(t, env.eng, id, api.ExecWaiting)
	assert.Equal(t, 1, x.RetryCount)

	env.timer.WaitReset(t)
	env.timer.Fire(env.now)

	x = waitForState(t, env.eng, id, api.ExecFailed)
	assert.Equal(t, 1, x.RetryCount)
	assert.NotEmpty(t, x.Error)
	assert.Len(t, x.StepHistory, 2)
}

func TestAwaitEventResumesExecution(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "follow-up",
		Name:        "Follow-up flow",
		InitialStep: "await-reply",
		Steps: []api.Step{
			{
				ID: "await-reply",
				Actions: []api.ActionCall{{
					Kind: api.ActionWait,
					Params: api.Payload{
						"await_event": "message_received",
					},
				}},
				NextSteps: []api.StepID{"thank"},
			},
			{
				ID: "thank",
				Actions: []api.ActionCall{{
					Kind: api.ActionMessage,
					Params: api.Payload{
						"template_id": "reminder",
						"channel":     "sms",
					},
				}},
			},
		},
	}))
	env.registerTrigger(t, "follow-up")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	require.Len(t, res.Triggered, 1)
	id := res.Triggered[0]

	x := waitForState(t, env.eng, id, api.ExecWaiting)
	assert.Equal(t, api.EventMessageReceived, x.AwaitEvent)

	_, err = env.eng.Submit(context.Background(), &api.Event{
		Type:      api.EventMessageReceived,
		SubjectID: "patient-42",
		Payload:   api.Payload{"responded": true},
	})
	require.NoError(t, err)

	x = waitForState(t, env.eng, id, api.ExecCompleted)
	assert.Equal(t, true, x.Context["responded"])
	assert.Empty(t, x.AwaitEvent)
	assert.Len(t, env.comm.Sent(), 1)
}

func TestAwaitIgnoresOtherSubjects(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "follow-up",
		Name:        "Follow-up flow",
		InitialStep: "await-reply",
		Steps: []api.Step{{
			ID: "await-reply",
			Actions: []api.ActionCall{{
				Kind:   api.ActionWait,
				Params: api.Payload{"await_event": "message_received"},
			}},
		}},
	}))
	env.registerTrigger(t, "follow-up")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	id := res.Triggered[0]
	waitForState(t, env.eng, id, api.ExecWaiting)

	_, err = env.eng.Submit(context.Background(), &api.Event{
		Type:      api.EventMessageReceived,
		SubjectID: "someone-else",
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	x, err := env.eng.GetExecution(id)
	require.NoError(t, err)
	assert.Equal(t, api.ExecWaiting, x.State)
}

func TestDecisionRoutesExecution(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "triage",
		Name:        "Triage flow",
		InitialStep: "route",
		Steps: []api.Step{
			{
				ID: "route",
				Actions: []api.ActionCall{{
					Kind: api.ActionDecision,
					Params: api.Payload{
						"cases": []any{
							map[string]any{
								"condition": map[string]any{
									"field_path": "is_new_patient",
									"operator":   "equals",
									"value":      true,
								},
								"next_step": "welcome",
							},
						},
						"default": "skip",
					},
				}},
				NextSteps: []api.StepID{"welcome", "skip"},
			},
			{
				ID: "welcome",
				Actions: []api.ActionCall{{
					Kind: api.ActionMessage,
					Params: api.Payload{
						"template_id": "reminder",
						"channel":     "sms",
					},
				}},
			},
			{ID: "skip"},
		},
	}))
	env.registerTrigger(t, "triage")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	require.Len(t, res.Triggered, 1)

	x := waitForState(t, env.eng, res.Triggered[0], api.ExecCompleted)
	require.Len(t, x.StepHistory, 2)
	assert.Equal(t, api.StepID("welcome"), x.StepHistory[1].StepID)
	assert.Len(t, env.comm.Sent(), 1)
}

func TestPauseAndResume(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "follow-up",
		Name:        "Follow-up flow",
		InitialStep: "await-reply",
		Steps: []api.Step{{
			ID: "await-reply",
			Actions: []api.ActionCall{{
				Kind:   api.ActionWait,
				Params: api.Payload{"await_event": "message_received"},
			}},
		}},
	}))
	env.registerTrigger(t, "follow-up")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	id := res.Triggered[0]
	waitForState(t, env.eng, id, api.ExecWaiting)

	require.NoError(t, env.eng.PauseExecution(id))
	waitForState(t, env.eng, id, api.ExecPaused)

	// Awaited events do not reach a paused execution
	_, err = env.eng.Submit(context.Background(), &api.Event{
		Type:      api.EventMessageReceived,
		SubjectID: "patient-42",
	})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	x, err := env.eng.GetExecution(id)
	require.NoError(t, err)
	assert.Equal(t, api.ExecPaused, x.State)

	require.NoError(t, env.eng.ResumeExecution(id))
	waitForState(t, env.eng, id, api.ExecWaiting)

	_, err = env.eng.Submit(context.Background(), &api.Event{
		Type:      api.EventMessageReceived,
		SubjectID: "patient-42",
	})
	require.NoError(t, err)
	waitForState(t, env.eng, id, api.ExecCompleted)
}

func TestCancelExecution(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "follow-up",
		Name:        "Follow-up flow",
		InitialStep: "await-reply",
		Steps: []api.Step{{
			ID: "await-reply",
			Actions: []api.ActionCall{{
				Kind:   api.ActionWait,
				Params: api.Payload{"await_event": "message_received"},
			}},
		}},
	}))
	env.registerTrigger(t, "follow-up")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	id := res.Triggered[0]
	waitForState(t, env.eng, id, api.ExecWaiting)

	require.NoError(t, env.eng.CancelExecution(id, "patient opted out"))
	x := waitForState(t, env.eng, id, api.ExecCancelled)
	assert.Contains(t, x.Error, "patient opted out")

	assert.ErrorIs(t, env.eng.CancelExecution(id, "again"),
		engine.ErrInvalidTransition)
	assert.ErrorIs(t, env.eng.PauseExecution(id),
		engine.ErrInvalidTransition)
}

func TestConcurrencyLimitRejectsStart(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.MaxConcurrentWorkflows = 1
	})
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "follow-up",
		Name:        "Follow-up flow",
		InitialStep: "await-reply",
		Steps: []api.Step{{
			ID: "await-reply",
			Actions: []api.ActionCall{{
				Kind:   api.ActionWait,
				Params: api.Payload{"await_event": "message_received"},
			}},
		}},
	}))
	env.registerTrigger(t, "follow-up")

	first, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	require.Len(t, first.Triggered, 1)
	waitForState(t, env.eng, first.Triggered[0], api.ExecWaiting)

	second, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	assert.Empty(t, second.Triggered)
	assert.NotEmpty(t, second.Message)
	assert.Equal(t, 1, env.eng.ActiveCount())
}

func TestStepTimeoutEscalates(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "escalating",
		Name:        "Escalating flow",
		InitialStep: "await-reply",
		Steps: []api.Step{{
			ID:             "await-reply",
			TimeoutMinutes: 30,
			Actions: []api.ActionCall{{
				Kind:   api.ActionWait,
				Params: api.Payload{"await_event": "message_received"},
			}},
		}},
		Escalation: &api.EscalationPolicy{
			Levels: []api.EscalationLevel{{
				Level:    1,
				Target:   "care-team",
				SetState: api.ExecEscalated,
			}},
		},
	}))
	env.registerTrigger(t, "escalating")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	id := res.Triggered[0]
	waitForState(t, env.eng, id, api.ExecWaiting)

	env.timer.WaitReset(t)
	env.timer.Fire(env.now)

	x := waitForState(t, env.eng, id, api.ExecEscalated)
	assert.Equal(t, 1, x.EscalationCount)
}

func TestEscalationPolicyCompletesWaitingStep(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "lapsing",
		Name:        "Lapsing flow",
		InitialStep: "await-reply",
		Steps: []api.Step{{
			ID:             "await-reply",
			TimeoutMinutes: 30,
			Actions: []api.ActionCall{{
				Kind:   api.ActionWait,
				Params: api.Payload{"await_event": "message_received"},
			}},
		}},
		Escalation: &api.EscalationPolicy{
			Levels: []api.EscalationLevel{{
				Level:    1,
				Target:   "care-team",
				SetState: api.ExecCompleted,
			}},
		},
	}))
	env.registerTrigger(t, "lapsing")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	id := res.Triggered[0]
	waitForState(t, env.eng, id, api.ExecWaiting)

	env.timer.WaitReset(t)
	env.timer.Fire(env.now)

	// The execution retires as genuinely terminal, never as a stranded
	// waiting snapshot
	x := waitForState(t, env.eng, id, api.ExecCompleted)
	assert.False(t, x.CompletedAt.IsZero())
	assert.Equal(t, 1, x.EscalationCount)
	assert.Equal(t, 0, env.eng.ActiveCount())
	assert.Empty(t, env.eng.ListActive())
}

func TestConcurrencyLimitHoldsUnderConcurrentStarts(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.MaxConcurrentWorkflows = 2
	})
	require.NoError(t, env.eng.RegisterWorkflow(&api.WorkflowDefinition{
		ID:          "follow-up",
		Name:        "Follow-up flow",
		InitialStep: "await-reply",
		Steps: []api.Step{{
			ID: "await-reply",
			Actions: []api.ActionCall{{
				Kind:   api.ActionWait,
				Params: api.Payload{"await_event": "message_received"},
			}},
		}},
	}))

	var started atomic.Int32
	var rejected atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.eng.StartWorkflow("follow-up", "patient-42", nil)
			switch {
			case err == nil:
				started.Add(1)
			case errors.Is(err, api.ErrConcurrencyLimit):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), started.Load())
	assert.Equal(t, int32(6), rejected.Load())
	assert.Equal(t, 2, env.eng.ActiveCount())
}

func TestWorkflowValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		def  *api.WorkflowDefinition
	}{
		{
			name: "no_steps",
			def: &api.WorkflowDefinition{
				ID: "bad", Name: "Bad", InitialStep: "x",
			},
		},
		{
			name: "unknown_initial_step",
			def: &api.WorkflowDefinition{
				ID: "bad", Name: "Bad", InitialStep: "missing",
				Steps: []api.Step{{ID: "a"}},
			},
		},
		{
			name: "unknown_next_step",
			def: &api.WorkflowDefinition{
				ID: "bad", Name: "Bad", InitialStep: "a",
				Steps: []api.Step{{
					ID: "a", NextSteps: []api.StepID{"missing"},
				}},
			},
		},
		{
			name: "duplicate_step",
			def: &api.WorkflowDefinition{
				ID: "bad", Name: "Bad", InitialStep: "a",
				Steps: []api.Step{{ID: "a"}, {ID: "a"}},
			},
		},
		{
			name: "unknown_action_kind",
			def: &api.WorkflowDefinition{
				ID: "bad", Name: "Bad", InitialStep: "a",
				Steps: []api.Step{{
					ID: "a",
					Actions: []api.ActionCall{{
						Kind: "carrier_pigeon",
					}},
				}},
			},
		},
		{
			name: "escalation_sets_invalid_state",
			def: &api.WorkflowDefinition{
				ID: "bad", Name: "Bad", InitialStep: "a",
				Steps: []api.Step{{ID: "a"}},
				Escalation: &api.EscalationPolicy{
					Levels: []api.EscalationLevel{{
						Level:    1,
						SetState: api.ExecPending,
					}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, env.eng.RegisterWorkflow(tt.def),
				api.ErrValidation)
		})
	}
}

func TestTriggerRejectsUnknownWorkflow(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.eng.RegisterTrigger(&api.Trigger{
		Name:       "dangling",
		EventTypes: []api.EventType{api.EventAppointmentScheduled},
		Rules: []api.Rule{{
			Conditions: []api.Condition{{
				FieldPath: "x", Operator: api.OpEquals, Value: 1,
			}},
		}},
		WorkflowID: "missing",
	})
	assert.ErrorIs(t, err, api.ErrValidation)
}

func TestTerminalExecutionsRemainQueryable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerMessageWorkflow(t, "welcome")
	env.registerTrigger(t, "welcome")

	res, err := env.eng.Submit(context.Background(), newPatientEvent())
	require.NoError(t, err)
	id := res.Triggered[0]
	waitForState(t, env.eng, id, api.ExecCompleted)

	assert.Equal(t, 0, env.eng.ActiveCount())

	list := env.eng.ListExecutions(&engine.ExecutionFilter{
		State: api.ExecCompleted,
	})
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	bySubject := env.eng.ListExecutions(&engine.ExecutionFilter{
		SubjectID: "patient-42",
	})
	assert.Len(t, bySubject, 1)
	assert.Empty(t, env.eng.ListActive())
}

func (c *testTimerConstructor) NewTimer(
	delay time.Duration,
) scheduler.Timer {
	timer := &fakeTimer{
		ch:     make(chan time.Time, 1),
		resets: make(chan time.Duration, 256),
		stops:  make(chan struct{}, 256),
	}
	_ = delay
	select {
	case c.created <- timer:
	default:
	}
	return timer
}

func (c *testTimerConstructor) WaitTimer(t *testing.T) *fakeTimer {
	t.Helper()
	select {
	case timer := <-c.created:
		return timer
	case <-time.After(waitTimeout):
		t.Fatal("scheduler timer was not created")
		return nil
	}
}

func (t *fakeTimer) Channel() <-chan time.Time {
	return t.ch
}

func (t *fakeTimer) Reset(delay time.Duration) bool {
	t.stopped.Store(false)
	select {
	case <-t.ch:
	default:
	}
	t.resets <- delay
	return true
}

func (t *fakeTimer) Stop() bool {
	alreadyStopped := t.stopped.Load()
	t.stopped.Store(true)
	select {
	case <-t.ch:
	default:
	}
	select {
	case t.stops <- struct{}{}:
	default:
	}
	return !alreadyStopped
}

func (t *fakeTimer) Fire(at time.Time) {
	if t.stopped.Load() {
		return
	}
	select {
	case t.ch <- at:
	default:
	}
}

func (t *fakeTimer) WaitReset(test *testing.T) time.Duration {
	test.Helper()
	select {
	case delay := <-t.resets:
		return delay
	case <-time.After(waitTimeout):
		test.Fatal("scheduler timer reset not observed")
		return 0
	}
}

func (t *fakeTimer) DrainStops() {
	for {
		select {
		case <-t.stops:
		default:
			return
		}
	}
}
