package model

import "time"

// Cron log statuses. Per agent, entries appear in the order
// selected -> (triggered -> success|failure) | skipped. A run is bracketed by
// cron_started and cron_completed summary rows.
const (
	CronStatusStarted   = "cron_started"
	CronStatusSelected  = "selected"
	CronStatusTriggered = "triggered"
	CronStatusSuccess   = "success"
	CronStatusFailure   = "failure"
	CronStatusSkipped   = "skipped"
	CronStatusCompleted = "cron_completed"
)

// CronLogEntry is one immutable audit record for a scheduler decision event.
// Schedule fields are snapshots taken at decision time so the log stays
// meaningful after the agent is edited.
type CronLogEntry struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id,omitempty"`
	AgentID         string    `json:"agent_id,omitempty"`
	AgentName       string    `json:"agent_name,omitempty"`
	Status          string    `json:"status"`
	Frequency       string    `json:"frequency,omitempty"`
	DayTime         string    `json:"day_time,omitempty"`
	ScheduleTime    string    `json:"schedule_time,omitempty"`
	Window          string    `json:"window,omitempty"`
	SkipReason      string    `json:"skip_reason,omitempty"`
	APIURL          string    `json:"api_url,omitempty"`
	SessionID       string    `json:"session_id,omitempty"`
	Message         string    `json:"message,omitempty"`
	AgentsChecked   int       `json:"agents_checked,omitempty"`
	AgentsTriggered int       `json:"agents_triggered,omitempty"`
	AgentsSkipped   int       `json:"agents_skipped,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
