package api

import "time"

type (
	// ErrorPattern counts occurrences of one distinct error message
	ErrorPattern struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}

	// ExecutionMetrics aggregates execution outcomes over a window
	ExecutionMetrics struct {
		Total              int            `json:"total"`
		Completed          int            `json:"completed"`
		Failed             int            `json:"failed"`
		Cancelled          int            `json:"cancelled"`
		Active             int            `json:"active"`
		SuccessRatePercent float64        `json:"success_rate_percent"`
		AvgDurationMillis  int64          `json:"avg_duration_ms"`
		MedianDurationMs   int64          `json:"median_duration_ms"`
		TopErrors          []ErrorPattern `json:"top_errors,omitempty"`
	}

	// SubjectEngagement aggregates per-subject response behavior
	SubjectEngagement struct {
		SubjectID         SubjectID `json:"subject_id"`
		Responses         int       `json:"responses"`
		Prompts           int       `json:"prompts"`
		ResponseRate      float64   `json:"response_rate"`
		AvgResponseMillis int64     `json:"avg_response_ms"`
		CompletionRate    float64   `json:"completion_rate"`
		Satisfaction      float64   `json:"satisfaction"`
		EngagementScore   float64   `json:"engagement_score"`
	}

	// TriggerMetrics aggregates per-trigger match counts
	TriggerMetrics struct {
		TriggerID    TriggerID `json:"trigger_id"`
		TotalMatches int64     `json:"total_matches"`
		LastMatched  time.Time `json:"last_matched,omitempty"`
	}

	// AnalyticsReport is the snapshot produced for a reporting window
	AnalyticsReport struct {
		Window      ReportWindow         `json:"window"`
		From        time.Time            `json:"from"`
		To          time.Time            `json:"to"`
		GeneratedAt time.Time            `json:"generated_at"`
		Executions  ExecutionMetrics     `json:"executions"`
		Engagement  []*SubjectEngagement `json:"engagement,omitempty"`
		Triggers    []*TriggerMetrics    `json:"triggers,omitempty"`
	}

	// ReportWindow names a reporting period
	ReportWindow string

	// EngagementWeights blends response, completion, and satisfaction
	// signals into the engagement score. Weights are configuration.
	EngagementWeights struct {
		ResponseRate   float64 `json:"response_rate"`
		CompletionRate float64 `json:"completion_rate"`
		Satisfaction   float64 `json:"satisfaction"`
	}
)

const (
	WindowDaily   ReportWindow = "daily"
	WindowWeekly  ReportWindow = "weekly"
	WindowMonthly ReportWindow = "monthly"
)
