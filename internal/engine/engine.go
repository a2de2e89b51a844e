// Package engine owns workflow executions end to end: it matches inbound
// events through the trigger registry, runs one actor per execution, and
// drives steps through their state machine until a terminal state.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/action"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/config"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/engine/scheduler"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/policy"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/store"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/trigger"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

type (
	// Engine is the core workflow orchestration engine. All execution
	// state lives in engine-owned memory; the audit trail and archive are
	// write-behind observers, never the source of truth.
	Engine struct {
		ctx      context.Context
		cancel   context.CancelFunc
		cfg      *config.Config
		triggers *trigger.Registry
		actions  *action.Registry
		sched    *scheduler.Scheduler
		now      scheduler.Clock
		audit    store.AuditStore
		archive  store.Archive
		observer ExecutionObserver
		hub      *Hub

		workflowMu sync.RWMutex
		workflows  map[api.WorkflowID]*api.WorkflowDefinition

		execMu   sync.RWMutex
		actors   map[api.ExecutionID]*execActor
		finished map[api.ExecutionID]*api.WorkflowExecution

		ingress topic.Topic[*api.Event]
		prod    topic.Producer[*api.Event]
		cons    topic.Consumer[*api.Event]

		active atomic.Int64
		wg     sync.WaitGroup
	}

	// Dependencies configures an Engine. Zero-valued fields fall back to
	// production defaults.
	Dependencies struct {
		Config           *config.Config
		Actions          *action.Registry
		Clock            scheduler.Clock
		TimerConstructor scheduler.TimerConstructor
		Audit            store.AuditStore
		Archive          store.Archive
		Observer         ExecutionObserver
	}

	// ExecutionObserver receives a snapshot after every execution change
	ExecutionObserver interface {
		ExecutionChanged(*api.WorkflowExecution)
	}
)

var (
	ErrShutdownTimeout   = errors.New("shutdown timeout exceeded")
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrWorkflowExists    = errors.New("workflow exists")
	ErrExecutionNotFound = errors.New("execution not found")
	ErrInvalidTransition = errors.New("invalid execution state transition")
)

// New creates an engine with the provided dependencies
func New(deps Dependencies) *Engine {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	makeTimer := deps.TimerConstructor
	if makeTimer == nil {
		makeTimer = scheduler.NewTimer
	}

	ctx, cancel := context.WithCancel(context.Background())
	ingress := caravan.NewTopic[*api.Event]()
	e := &Engine{
		ctx:       ctx,
		cancel:    cancel,
		cfg:       cfg,
		actions:   deps.Actions,
		sched:     scheduler.New(now, makeTimer),
		now:       now,
		audit:     deps.Audit,
		archive:   deps.Archive,
		observer:  deps.Observer,
		hub:       NewHub(),
		workflows: map[api.WorkflowID]*api.WorkflowDefinition{},
		actors:    map[api.ExecutionID]*execActor{},
		finished:  map[api.ExecutionID]*api.WorkflowExecution{},
		ingress:   ingress,
		prod:      ingress.NewProducer(),
		cons:      ingress.NewConsumer(),
	}
	e.triggers = trigger.NewRegistry(
		policy.Clock(now), e.lookupWorkflow,
	)
	return e
}

// Start begins scheduler and event dispatch processing
func (e *Engine) Start() {
	slog.Info("Engine starting")
	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		e.sched.Run(e.ctx)
	}()
	go func() {
		defer e.wg.Done()
		e.eventLoop()
	}()
}

// Stop gracefully shuts down the engine, waiting for in-flight actors up
// to the configured shutdown timeout
func (e *Engine) Stop() error {
	e.cancel()
	defer e.hub.Close()
	defer e.cons.Close()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Engine stopped")
		return nil
	case <-time.After(e.cfg.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// Hub exposes the stream event hub for websocket subscribers
func (e *Engine) Hub() *Hub {
	return e.hub
}

// Triggers exposes the trigger registry
func (e *Engine) Triggers() *trigger.Registry {
	return e.triggers
}

// SetObserver installs the execution observer. Call before Start; the
// observer is not guarded against concurrent replacement.
func (e *Engine) SetObserver(o ExecutionObserver) {
	e.observer = o
}

// ActiveCount returns the number of non-terminal executions
func (e *Engine) ActiveCount() int {
	return int(e.active.Load())
}

// eventLoop delivers ingested events to executions awaiting them
func (e *Engine) eventLoop() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case ev, ok := <-e.cons.Receive():
			if !ok {
				return
			}
			e.deliverAwaited(ev)
		}
	}
}

// deliverAwaited wakes every waiting execution whose awaited event type
// and subject match the inbound event
func (e *Engine) deliverAwaited(ev *api.Event) {
	e.execMu.RLock()
	actors := make([]*execActor, 0, len(e.actors))
	for _, wa := range e.actors {
		actors = append(actors, wa)
	}
	e.execMu.RUnlock()

	for _, wa := range actors {
		if wa.awaiting(ev) {
			wa.signal(actorSignal{kind: sigEvent, event: ev})
		}
	}
}

func (e *Engine) lookupWorkflow(id api.WorkflowID) *api.WorkflowDefinition {
	e.workflowMu.RLock()
	defer e.workflowMu.RUnlock()
	return e.workflows[id]
}

func (e *Engine) publish(ev *api.StreamEvent) {
	ev.Timestamp = e.now().UnixMilli()
	e.hub.Publish(ev)
}

func (e *Engine) notifyObserver(snapshot *api.WorkflowExecution) {
	if e.observer != nil {
		e.observer.ExecutionChanged(snapshot)
	}
}

func (e *Engine) recordAudit(entry *api.AuditEntry) {
	if e.audit == nil {
		return
	}
	entry.At = e.now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.audit.Append(ctx, entry); err != nil {
		slog.Warn("Failed to record audit entry", log.Error(err))
	}
}

func (e *Engine) sendIngress(ev *api.Event) {
	message.Send(e.prod, ev)
}
