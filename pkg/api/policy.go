package api

import "time"

type (
	// ClockRange is a daily time-of-day range. Ranges where End precedes
	// Start wrap past midnight.
	ClockRange struct {
		Start ClockTime `json:"start"`
		End   ClockTime `json:"end"`
	}

	// ClockTime is a time of day in 24-hour "HH:MM" form
	ClockTime string

	// WeeklyBlackout suppresses traffic during a time range on one weekday
	WeeklyBlackout struct {
		Weekday time.Weekday `json:"weekday"`
		Range   ClockRange   `json:"range"`
	}

	// SeasonalBlackout suppresses traffic during a recurring calendar
	// period. Periods where the end month/day precedes the start wrap
	// past year end.
	SeasonalBlackout struct {
		Name       string     `json:"name,omitempty"`
		StartMonth time.Month `json:"start_month"`
		StartDay   int        `json:"start_day"`
		EndMonth   time.Month `json:"end_month"`
		EndDay     int        `json:"end_day"`
	}

	// Restrictions gathers the temporal and cultural gates applied before
	// a trigger may fire or a message may be sent
	Restrictions struct {
		QuietHours        *ClockRange        `json:"quiet_hours,omitempty"`
		DailyBlackouts    []ClockRange       `json:"daily_blackouts,omitempty"`
		WeeklyBlackouts   []WeeklyBlackout   `json:"weekly_blackouts,omitempty"`
		SeasonalBlackouts []SeasonalBlackout `json:"seasonal_blackouts,omitempty"`
		AllowUrgentBypass bool               `json:"allow_urgent_bypass,omitempty"`
	}
)

// Minutes parses the clock time and returns minutes since midnight. Returns
// -1 when the value is not a valid "HH:MM" time.
func (t ClockTime) Minutes() int {
	if len(t) != 5 || t[2] != ':' {
		return -1
	}
	h := digits2(string(t[:2]))
	m := digits2(string(t[3:]))
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

func digits2(s string) int {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return -1
	}
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
