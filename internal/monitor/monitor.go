// Package monitor tracks execution health and produces the engine's
// analytics: stalled-execution alerts, outcome metrics, per-subject
// engagement, and periodic reports.
package monitor

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/config"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/store"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

type (
	// TriggerStatsSource supplies trigger statistics for reports
	TriggerStatsSource interface {
		List() []*api.Trigger
		Stats(api.TriggerID) (api.TriggerStats, bool)
	}

	// Monitor aggregates execution snapshots into alerts and analytics.
	// It observes the engine; it never mutates executions.
	Monitor struct {
		ctx      context.Context
		cancel   context.CancelFunc
		cfg      *config.Config
		now      func() time.Time
		archive  store.Archive
		triggers TriggerStatsSource
		weights  api.EngagementWeights

		mu          sync.RWMutex
		executions  map[api.ExecutionID]*api.WorkflowExecution
		alerts      map[api.AlertID]*api.Alert
		alertByExec map[api.ExecutionID]api.AlertID

		reportCycles int
		wg           sync.WaitGroup
	}
)

const topErrorCount = 5

// New creates a monitor. The archive and trigger source may be nil when
// reports are not wanted.
func New(
	cfg *config.Config, now func() time.Time, archive store.Archive,
	triggers TriggerStatsSource,
) *Monitor {
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		now:      now,
		archive:  archive,
		triggers: triggers,
		weights: api.EngagementWeights{
			ResponseRate:   cfg.Engagement.ResponseWeight,
			CompletionRate: cfg.Engagement.CompletionWeight,
			Satisfaction:   cfg.Engagement.SatisfactionWeight,
		},
		executions:  map[api.ExecutionID]*api.WorkflowExecution{},
		alerts:      map[api.AlertID]*api.Alert{},
		alertByExec: map[api.ExecutionID]api.AlertID{},
	}
}

// Start begins the periodic stall check and report loops
func (m *Monitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run()
	}()
}

// Stop shuts the monitor loops down
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

// ExecutionChanged ingests an execution snapshot. Terminal snapshots
// auto-resolve any stall alert raised for the execution.
func (m *Monitor) ExecutionChanged(x *api.WorkflowExecution) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.executions[x.ID] = x
	if !x.State.IsTerminal() {
		return
	}
	if alertID, ok := m.alertByExec[x.ID]; ok {
		if alert := m.alerts[alertID]; alert != nil {
			alert.Resolved = true
		}
		delete(m.alertByExec, x.ID)
	}
	if x.State == api.ExecFailed &&
		strings.Contains(x.Error, api.ErrComplianceBlocked.Error()) {
		m.raiseComplianceAlert(x)
	}
}

// raiseComplianceAlert flags an execution that failed because outbound
// content was blocked by the compliance check. These never auto-resolve.
func (m *Monitor) raiseComplianceAlert(x *api.WorkflowExecution) {
	alert := &api.Alert{
		ID:       api.NewAlertID(),
		Severity: api.SeverityCritical,
		Title:    "Message blocked by compliance",
		Description: "execution " + string(x.ID) +
			" failed a compliance content check",
		ExecutionID: x.ID,
		TriggeredAt: m.now(),
	}
	m.alerts[alert.ID] = alert

	slog.Error("Compliance block alert raised",
		log.ExecutionID(x.ID),
		log.ErrorString(x.Error))
}

// CheckStalled raises or upgrades alerts for executions whose total
// runtime has passed the configured thresholds. Step progress does not
// reset the clock; the thresholds bound the whole execution.
func (m *Monitor) CheckStalled() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, x := range m.executions {
		if x.State != api.ExecRunning && x.State != api.ExecWaiting {
			continue
		}
		running := now.Sub(x.StartedAt)
		severity := api.AlertSeverity("")
		switch {
		case running >= m.cfg.StalledErrorAfter:
			severity = api.SeverityError
		case running >= m.cfg.StalledWarnAfter:
			severity = api.SeverityWarning
		default:
			continue
		}
		m.raiseStallAlert(x, severity, running, now)
	}
}

// Alerts returns all unresolved alerts, newest first
func (m *Monitor) Alerts() []*api.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]*api.Alert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		if !alert.Resolved {
			res = append(res, alert)
		}
	}
	slices.SortFunc(res, func(a, b *api.Alert) int {
		switch {
		case a.TriggeredAt.After(b.TriggeredAt):
			return -1
		case a.TriggeredAt.Before(b.TriggeredAt):
			return 1
		default:
			return 0
		}
	})
	return res
}

// Acknowledge marks an alert as seen by an operator
func (m *Monitor) Acknowledge(id api.AlertID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert, ok := m.alerts[id]
	if !ok {
		return false
	}
	alert.Acknowledged = true
	return true
}

func (m *Monitor) run() {
	checkInterval := m.cfg.StalledWarnAfter / 4
	if checkInterval <= 0 || checkInterval > 15*time.Minute {
		checkInterval = 15 * time.Minute
	}
	stallTicker := time.NewTicker(checkInterval)
	defer stallTicker.Stop()
	reportTicker := time.NewTicker(m.cfg.ReportInterval)
	defer reportTicker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-stallTicker.C:
			m.CheckStalled()
		case <-reportTicker.C:
			m.archiveDueReports()
		}
	}
}

// archiveDueReports runs once per report cycle. The daily snapshot goes
// out every cycle; weekly and monthly snapshots go out on every seventh
// and thirtieth.
func (m *Monitor) archiveDueReports() {
	m.reportCycles++
	m.generateAndArchive(api.WindowDaily)
	if m.reportCycles%7 == 0 {
		m.generateAndArchive(api.WindowWeekly)
	}
	if m.reportCycles%30 == 0 {
		m.generateAndArchive(api.WindowMonthly)
	}
}

func (m *Monitor) generateAndArchive(window api.ReportWindow) {
	report := m.Report(window)
	if m.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(
		context.Background(), 30*time.Second)
	defer cancel()
	if err := m.archive.PutReport(ctx, report); err != nil {
		slog.Warn("Failed to archive analytics report", log.Error(err))
		return
	}
	slog.Info("Analytics report archived",
		slog.String("window", string(window)))
}

func (m *Monitor) raiseStallAlert(
	x *api.WorkflowExecution, severity api.AlertSeverity,
	running time.Duration, now time.Time,
) {
	if alertID, ok := m.alertByExec[x.ID]; ok {
		alert := m.alerts[alertID]
		if alert != nil && alert.Severity != severity {
			alert.Severity = severity
			alert.Description = stallDescription(x, running)
		}
		return
	}

	alert := &api.Alert{
		ID:          api.NewAlertID(),
		Severity:    severity,
		Title:       "Execution running too long",
		Description: stallDescription(x, running),
		ExecutionID: x.ID,
		TriggeredAt: now,
	}
	m.alerts[alert.ID] = alert
	m.alertByExec[x.ID] = alert.ID

	slog.Warn("Long-running execution alert raised",
		log.ExecutionID(x.ID),
		slog.String("severity", string(severity)),
		slog.Duration("running", running))
}

func stallDescription(
	x *api.WorkflowExecution, running time.Duration,
) string {
	return "execution " + string(x.ID) + " has been running for " +
		running.Truncate(time.Minute).String()
}
