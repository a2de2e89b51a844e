// Package trigger stores registered triggers and matches inbound events
// against them, enforcing temporal restrictions, cooldowns, and rate
// limits before rule evaluation.
package trigger

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/policy"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

type (
	// WorkflowResolver looks up a registered workflow definition so that
	// trigger validation can cross-check its target
	WorkflowResolver func(api.WorkflowID) *api.WorkflowDefinition

	// Registry owns the trigger table and its statistics. Statistics are
	// mutated only under the registry lock, by the matcher.
	Registry struct {
		mu       sync.RWMutex
		triggers map[api.TriggerID]*api.Trigger
		stats    map[api.TriggerID]*api.TriggerStats
		policy   *policy.Evaluator
		resolve  WorkflowResolver
		now      policy.Clock
	}
)

// NewRegistry creates an empty trigger registry
func NewRegistry(now policy.Clock, resolve WorkflowResolver) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		triggers: map[api.TriggerID]*api.Trigger{},
		stats:    map[api.TriggerID]*api.TriggerStats{},
		policy:   policy.New(now),
		resolve:  resolve,
		now:      now,
	}
}

// Register validates and stores a trigger, initializing its statistics to
// zero. Fails with a wrapped api.ErrValidation on the first violation.
func (r *Registry) Register(tr *api.Trigger) (api.TriggerID, error) {
	if err := r.validate(tr); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tr.ID == "" {
		tr.ID = api.TriggerID(uuid.NewString())
	}
	if tr.Status == "" {
		tr.Status = api.TriggerActive
	}
	r.triggers[tr.ID] = tr
	r.stats[tr.ID] = &api.TriggerStats{}
	return tr.ID, nil
}

// Get returns the trigger with the given ID
func (r *Registry) Get(id api.TriggerID) (*api.Trigger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tr, ok := r.triggers[id]
	return tr, ok
}

// List returns all registered triggers sorted by name
func (r *Registry) List() []*api.Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*api.Trigger, 0, len(r.triggers))
	for _, tr := range r.triggers {
		res = append(res, tr)
	}
	slices.SortFunc(res, func(a, b *api.Trigger) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return res
}

// Stats returns a copy of the statistics for a trigger
func (r *Registry) Stats(id api.TriggerID) (api.TriggerStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.stats[id]
	if !ok {
		return api.TriggerStats{}, false
	}
	return *st, true
}

// SetStatus changes a trigger's lifecycle status
func (r *Registry) SetStatus(id api.TriggerID, s api.TriggerStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.triggers[id]
	if !ok {
		return false
	}
	tr.Status = s
	return true
}

// Evaluate matches an event against all active triggers and returns those
// that fire. Matching triggers have their statistics updated atomically
// with the match decision.
func (r *Registry) Evaluate(ev *api.Event) []*api.Trigger {
	doc, err := NewEventDoc(ev)
	if err != nil {
		slog.Error("Failed to index event for matching",
			log.EventID(ev.ID), log.Error(err))
		return nil
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*api.Trigger
	for id, tr := range r.triggers {
		if !r.candidate(tr, ev) {
			continue
		}
		st := r.stats[id]
		if !r.withinBudget(tr, st, now) {
			continue
		}
		if !rulesMatch(doc, tr, now) {
			continue
		}
		r.recordMatch(st, now)
		matched = append(matched, tr)
	}
	return matched
}

// candidate applies the cheap pre-rule filters: status, event type, event
// source, and the temporal/cultural gates
func (r *Registry) candidate(tr *api.Trigger, ev *api.Event) bool {
	if tr.Status != api.TriggerActive && tr.Status != api.TriggerTesting {
		return false
	}
	if !slices.Contains(tr.EventTypes, ev.Type) {
		return false
	}
	if len(tr.EventSources) > 0 &&
		!slices.Contains(tr.EventSources, ev.Source) {
		return false
	}
	return r.policy.Allows(tr.Restrictions, ev.Priority)
}

// withinBudget enforces cooldown and the per-hour/per-day rate limits
func (r *Registry) withinBudget(
	tr *api.Trigger, st *api.TriggerStats, now time.Time,
) bool {
	if tr.CooldownMinutes > 0 && !st.LastTriggered.IsZero() {
		cooldown := time.Duration(tr.CooldownMinutes) * time.Minute
		if now.Before(st.LastTriggered.Add(cooldown)) {
			return false
		}
	}

	if tr.MaxPerHour > 0 {
		if now.Sub(st.HourStart) >= time.Hour {
			st.HourStart = now
			st.HourCount = 0
		}
		if st.HourCount >= tr.MaxPerHour {
			return false
		}
	}

	if tr.MaxPerDay > 0 {
		if now.Sub(st.DayStart) >= 24*time.Hour {
			st.DayStart = now
			st.DayCount = 0
		}
		if st.DayCount >= tr.MaxPerDay {
			return false
		}
	}
	return true
}

// rulesMatch requires every rule on the trigger to evaluate true. Multiple
// rules are always conjunctive; breadth comes from OR within a rule.
func rulesMatch(doc *EventDoc, tr *api.Trigger, now time.Time) bool {
	for i := range tr.Rules {
		if !EvalRule(doc, &tr.Rules[i], now) {
			return false
		}
	}
	return true
}

func (r *Registry) recordMatch(st *api.TriggerStats, now time.Time) {
	st.TotalMatches++
	st.LastTriggered = now
	if st.HourStart.IsZero() {
		st.HourStart = now
	}
	if st.DayStart.IsZero() {
		st.DayStart = now
	}
	st.HourCount++
	st.DayCount++
}

func (r *Registry) validate(tr *api.Trigger) error {
	if tr.Name == "" {
		return fmt.Errorf("%w: trigger name is required", api.ErrValidation)
	}
	if len(tr.EventTypes) == 0 {
		return fmt.Errorf(
			"%w: trigger %q needs at least one event type",
			api.ErrValidation, tr.Name)
	}
	if len(tr.Rules) == 0 {
		return fmt.Errorf("%w: trigger %q needs at least one rule",
			api.ErrValidation, tr.Name)
	}
	for i := range tr.Rules {
		if err := validateRule(tr.Name, &tr.Rules[i]); err != nil {
			return err
		}
	}
	if tr.WorkflowID == "" {
		return fmt.Errorf("%w: trigger %q needs a target workflow",
			api.ErrValidation, tr.Name)
	}
	if r.resolve != nil && r.resolve(tr.WorkflowID) == nil {
		return fmt.Errorf("%w: trigger %q references unknown workflow %q",
			api.ErrValidation, tr.Name, tr.WorkflowID)
	}
	return nil
}

func validateRule(name string, rule *api.Rule) error {
	if len(rule.Conditions) == 0 {
		return fmt.Errorf(
			"%w: trigger %q has a rule with no conditions",
			api.ErrValidation, name)
	}
	for i := range rule.Conditions {
		c := &rule.Conditions[i]
		if c.FieldPath == "" {
			return fmt.Errorf(
				"%w: trigger %q has a condition with no field path",
				api.ErrValidation, name)
		}
		if c.Operator == "" {
			return fmt.Errorf(
				"%w: trigger %q has a condition with no operator",
				api.ErrValidation, name)
		}
	}
	return nil
}
