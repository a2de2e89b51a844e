package monitor

import (
	"slices"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// Metrics aggregates outcomes for executions started inside the window.
// Zero window bounds mean unbounded.
func (m *Monitor) Metrics(from, to time.Time) api.ExecutionMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var res api.ExecutionMetrics
	var durations []time.Duration
	errorCounts := map[string]int{}

	for _, x := range m.executions {
		if !inWindow(x.StartedAt, from, to) {
			continue
		}
		res.Total++
		switch x.State {
		case api.ExecCompleted:
			res.Completed++
		case api.ExecFailed:
			res.Failed++
			if x.Error != "" {
				errorCounts[x.Error]++
			}
		case api.ExecCancelled:
			res.Cancelled++
		default:
			res.Active++
		}
		if d := x.Duration(); d > 0 {
			durations = append(durations, d)
		}
	}

	// Success rate is completed over everything started in the window,
	// so still-active executions count against it
	if res.Total > 0 {
		res.SuccessRatePercent =
			float64(res.Completed) / float64(res.Total) * 100
	}
	if len(durations) > 0 {
		slices.Sort(durations)
		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		res.AvgDurationMillis =
			(sum / time.Duration(len(durations))).Milliseconds()
		res.MedianDurationMs = durations[len(durations)/2].Milliseconds()
	}
	res.TopErrors = topErrors(errorCounts, topErrorCount)
	return res
}

// Engagement aggregates per-subject response behavior across all known
// executions, scored with the configured weights
func (m *Monitor) Engagement() []*api.SubjectEngagement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type tally struct {
		prompts       int
		responses     int
		completed     int
		terminal      int
		satisfaction  float64
		rated         int
		latencyMillis int64
		timed         int
	}
	bySubject := map[api.SubjectID]*tally{}

	for _, x := range m.executions {
		if x.SubjectID == "" {
			continue
		}
		t := bySubject[x.SubjectID]
		if t == nil {
			t = &tally{}
			bySubject[x.SubjectID] = t
		}
		t.prompts += countPrompts(x)
		if _, ok := x.Context["response_event_id"]; ok {
			t.responses++
			if lat := responseLatency(x); lat > 0 {
				t.latencyMillis += lat
				t.timed++
			}
		}
		if x.State.IsTerminal() {
			t.terminal++
			if x.State == api.ExecCompleted {
				t.completed++
			}
		}
		if s, ok := x.Context["satisfaction"].(float64); ok {
			t.satisfaction += s
			t.rated++
		}
	}

	res := make([]*api.SubjectEngagement, 0, len(bySubject))
	for subject, t := range bySubject {
		eng := &api.SubjectEngagement{
			SubjectID: subject,
			Prompts:   t.prompts,
			Responses: t.responses,
		}
		if t.prompts > 0 {
			eng.ResponseRate = float64(t.responses) / float64(t.prompts)
		}
		if t.terminal > 0 {
			eng.CompletionRate = float64(t.completed) / float64(t.terminal)
		}
		if t.rated > 0 {
			eng.Satisfaction = t.satisfaction / float64(t.rated)
		}
		if t.timed > 0 {
			eng.AvgResponseMillis = t.latencyMillis / int64(t.timed)
		}
		eng.EngagementScore = m.weights.ResponseRate*eng.ResponseRate +
			m.weights.CompletionRate*eng.CompletionRate +
			m.weights.Satisfaction*eng.Satisfaction
		res = append(res, eng)
	}

	slices.SortFunc(res, func(a, b *api.SubjectEngagement) int {
		switch {
		case a.EngagementScore > b.EngagementScore:
			return -1
		case a.EngagementScore < b.EngagementScore:
			return 1
		default:
			return 0
		}
	})
	return res
}

// Report produces the analytics snapshot for a reporting window ending now
func (m *Monitor) Report(window api.ReportWindow) *api.AnalyticsReport {
	now := m.now()
	from := now.Add(-windowLength(window))

	report := &api.AnalyticsReport{
		Window:      window,
		From:        from,
		To:          now,
		GeneratedAt: now,
		Executions:  m.Metrics(from, now),
		Engagement:  m.Engagement(),
	}

	if m.triggers != nil {
		for _, tr := range m.triggers.List() {
			st, ok := m.triggers.Stats(tr.ID)
			if !ok {
				continue
			}
			report.Triggers = append(report.Triggers, &api.TriggerMetrics{
				TriggerID:    tr.ID,
				TotalMatches: st.TotalMatches,
				LastMatched:  st.LastTriggered,
			})
		}
	}
	return report
}

func windowLength(window api.ReportWindow) time.Duration {
	switch window {
	case api.WindowWeekly:
		return 7 * 24 * time.Hour
	case api.WindowMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func inWindow(at, from, to time.Time) bool {
	if !from.IsZero() && at.Before(from) {
		return false
	}
	return to.IsZero() || !at.After(to)
}

func topErrors(counts map[string]int, n int) []api.ErrorPattern {
	if len(counts) == 0 {
		return nil
	}
	res := make([]api.ErrorPattern, 0, len(counts))
	for msg, count := range counts {
		res = append(res, api.ErrorPattern{Message: msg, Count: count})
	}
	slices.SortFunc(res, func(a, b api.ErrorPattern) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Message < b.Message {
			return -1
		}
		return 1
	})
	if len(res) > n {
		res = res[:n]
	}
	return res
}

// responseLatency measures millis between the last successful outbound
// message and the recorded response arrival, when both are known
func responseLatency(x *api.WorkflowExecution) int64 {
	respAt := contextMillis(x.Context, "response_received_at")
	if respAt == 0 {
		return 0
	}
	var prompt time.Time
	for i := range x.StepHistory {
		entry := &x.StepHistory[i]
		for j := range entry.ActionResults {
			res := &entry.ActionResults[j]
			if res.Kind == api.ActionMessage && res.Success &&
				entry.CompletedAt.After(prompt) {
				prompt = entry.CompletedAt
			}
		}
	}
	if prompt.IsZero() {
		return 0
	}
	return respAt - prompt.UnixMilli()
}

// contextMillis reads a millisecond timestamp that may have round-tripped
// through JSON
func contextMillis(p api.Payload, key string) int64 {
	switch v := p[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	}
	return 0
}

// countPrompts counts successful outbound message deliveries in the step
// history
func countPrompts(x *api.WorkflowExecution) int {
	count := 0
	for i := range x.StepHistory {
		entry := &x.StepHistory[i]
		for j := range entry.ActionResults {
			res := &entry.ActionResults[j]
			if res.Kind == api.ActionMessage && res.Success {
				count++
			}
		}
	}
	return count
}
