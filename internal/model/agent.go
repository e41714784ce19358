package model

import "time"

// Agent frequency values. Only these three are schedulable.
const (
	FrequencyDaily   = "Daily"
	FrequencyWeekly  = "Weekly"
	FrequencyMonthly = "Monthly"
)

// Agent is a tenant-configured schedulable unit. When triggered, it calls the
// external agent-execution service to perform an automated action.
//
// DayTime selects a weekday (Weekly, "W-3") or day of month (Monthly, "M-15");
// legacy rows may carry a bare number. ScheduleTime is a local "HH:mm" string.
// Active is carried for the management API but does not gate scheduling;
// IsAgent is the scheduler's eligibility flag.
type Agent struct {
	ID              string     `json:"id"`
	OrganizationID  string     `json:"organization_id"`
	Name            string     `json:"name"`
	Frequency       string     `json:"frequency"`
	DayTime         *string    `json:"day_time,omitempty"`
	ScheduleTime    *string    `json:"schedule_time,omitempty"`
	IsAgent         bool       `json:"is_agent"`
	Active          bool       `json:"active"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
