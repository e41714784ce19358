package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/model"
)

// CronLogService is the append-only writer for scheduler audit records, plus
// the filtered read used by the management API. Entries are never updated or
// deleted.
type CronLogService struct {
	db DB
}

func NewCronLogService(db DB) *CronLogService {
	return &CronLogService{db: db}
}

// Record appends one audit entry. ID and CreatedAt are filled in when unset.
func (s *CronLogService) Record(ctx context.Context, entry *model.CronLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO cron_logs (id, organization_id, agent_id, agent_name, status, frequency, day_time, schedule_time, window_range, skip_reason, api_url, session_id, message, agents_checked, agents_triggered, agents_skipped, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		entry.ID, entry.OrganizationID, entry.AgentID, entry.AgentName, entry.Status,
		entry.Frequency, entry.DayTime, entry.ScheduleTime, entry.Window, entry.SkipReason,
		entry.APIURL, entry.SessionID, entry.Message,
		entry.AgentsChecked, entry.AgentsTriggered, entry.AgentsSkipped, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cron log entry: %w", err)
	}
	return nil
}

// CronLogFilter narrows a cron log listing. Zero values mean no filter.
type CronLogFilter struct {
	OrganizationID string
	AgentID        string
	Status         string
}

func (s *CronLogService) List(ctx context.Context, filter CronLogFilter, limit int, cursor string) ([]model.CronLogEntry, bool, error) {
	query := `SELECT id, organization_id, agent_id, agent_name, status, frequency, day_time, schedule_time, window_range, skip_reason, api_url, session_id, message, agents_checked, agents_triggered, agents_skipped, created_at FROM cron_logs`
	var conds []string
	args := []any{}
	argIdx := 1

	addCond := func(cond string, value any) {
		conds = append(conds, fmt.Sprintf(cond, argIdx))
		args = append(args, value)
		argIdx++
	}

	if filter.OrganizationID != "" {
		addCond(`organization_id = $%d`, filter.OrganizationID)
	}
	if filter.AgentID != "" {
		addCond(`agent_id = $%d`, filter.AgentID)
	}
	if filter.Status != "" {
		addCond(`status = $%d`, filter.Status)
	}
	if cursor != "" {
		addCond(`id > $%d`, cursor)
	}

	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list cron logs: %w", err)
	}
	defer rows.Close()

	var entries []model.CronLogEntry
	for rows.Next() {
		var e model.CronLogEntry
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.AgentID, &e.AgentName, &e.Status,
			&e.Frequency, &e.DayTime, &e.ScheduleTime, &e.Window, &e.SkipReason,
			&e.APIURL, &e.SessionID, &e.Message,
			&e.AgentsChecked, &e.AgentsTriggered, &e.AgentsSkipped, &e.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan cron log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate cron logs: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}
	return entries, hasMore, nil
}
