package api

import "time"

type (
	// AlertSeverity ranks monitoring alerts
	AlertSeverity string

	// Alert flags an execution needing operator attention. Alerts
	// referencing an execution auto-resolve when it reaches a terminal
	// state.
	Alert struct {
		ID           AlertID       `json:"id"`
		Severity     AlertSeverity `json:"severity"`
		Title        string        `json:"title"`
		Description  string        `json:"description,omitempty"`
		ExecutionID  ExecutionID   `json:"execution_id,omitempty"`
		TriggeredAt  time.Time     `json:"triggered_at"`
		Acknowledged bool          `json:"acknowledged,omitempty"`
		Resolved     bool          `json:"resolved,omitempty"`
	}
)

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityError    AlertSeverity = "error"
	SeverityCritical AlertSeverity = "critical"
)
