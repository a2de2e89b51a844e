// Package scheduler runs the engine's delayed work: wait resumptions,
// retry backoffs, and step or workflow timeouts. Tasks are keyed by
// hierarchical paths so one execution's timers can be replaced or
// dropped together.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

type (
	// Func is invoked when a scheduled task comes due
	Func func() error

	// Scheduler accepts requests over a channel and services them from a
	// single run loop, arming one timer for the earliest pending task
	Scheduler struct {
		now      Clock
		newTimer TimerConstructor
		reqs     chan request
	}

	// request mutates the pending set. Exactly one field is populated.
	request struct {
		add    *task
		remove []string
		prune  []string
	}
)

const requestBuffer = 100

// New creates a scheduler using the provided clock and timer constructor
func New(now Clock, newTimer TimerConstructor) *Scheduler {
	return &Scheduler{
		now:      now,
		newTimer: newTimer,
		reqs:     make(chan request, requestBuffer),
	}
}

// Schedule enqueues a task to run at the requested time. Scheduling a
// second task on the same path replaces the first.
func (s *Scheduler) Schedule(
	ctx context.Context, path []string, at time.Time, fn Func,
) {
	s.send(ctx, request{add: &task{fn: fn, at: at, path: path}})
}

// Cancel removes the task pending for the exact path
func (s *Scheduler) Cancel(ctx context.Context, path []string) {
	s.send(ctx, request{remove: path})
}

// CancelPrefix removes every task pending under the path prefix
func (s *Scheduler) CancelPrefix(ctx context.Context, prefix []string) {
	s.send(ctx, request{prune: prefix})
}

// Run services scheduler requests until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	pending := newDueQueue()
	timer := s.newTimer(0)
	var fire <-chan time.Time

	rearm := func() {
		head := pending.head()
		if head == nil {
			timer.Stop()
			fire = nil
			return
		}
		timer.Reset(head.at.Sub(s.now()))
		fire = timer.Channel()
	}
	rearm()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case req := <-s.reqs:
			apply(pending, req)
			rearm()
		case <-fire:
			if t := pending.next(); t != nil {
				if err := t.fn(); err != nil {
					slog.Error("Scheduled task failed", log.Error(err))
				}
			}
			rearm()
		}
	}
}

func apply(pending *dueQueue, req request) {
	switch {
	case req.add != nil:
		pending.add(req.add)
	case req.remove != nil:
		pending.cancel(req.remove)
	case req.prune != nil:
		pending.prune(req.prune)
	}
}

func (s *Scheduler) send(ctx context.Context, req request) {
	select {
	case s.reqs <- req:
	case <-ctx.Done():
	}
}
