package core

import (
	"context"
	"fmt"
	"time"

	"github.com/pulseboard/pulseboard/internal/model"
)

type AgentService struct {
	db DB
}

func NewAgentService(db DB) *AgentService {
	return &AgentService{db: db}
}

const agentColumns = `id, organization_id, name, frequency, day_time, schedule_time, is_agent, active, last_triggered_at, created_at, updated_at`

func scanAgent(row interface{ Scan(dest ...any) error }) (model.Agent, error) {
	var a model.Agent
	err := row.Scan(&a.ID, &a.OrganizationID, &a.Name, &a.Frequency, &a.DayTime,
		&a.ScheduleTime, &a.IsAgent, &a.Active, &a.LastTriggeredAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *AgentService) Create(ctx context.Context, agent *model.Agent) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO agents (id, organization_id, name, frequency, day_time, schedule_time, is_agent, active, last_triggered_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		agent.ID, agent.OrganizationID, agent.Name, agent.Frequency, agent.DayTime,
		agent.ScheduleTime, agent.IsAgent, agent.Active, agent.LastTriggeredAt,
		agent.CreatedAt, agent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

func (s *AgentService) GetByID(ctx context.Context, id string) (*model.Agent, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
	a, err := scanAgent(row)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", id, err)
	}
	return &a, nil
}

func (s *AgentService) ListByOrganization(ctx context.Context, orgID string, limit int, cursor string) ([]model.Agent, bool, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE organization_id = $1`
	args := []any{orgID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list agents for organization %s: %w", orgID, err)
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate agents: %w", err)
	}

	hasMore := len(agents) > limit
	if hasMore {
		agents = agents[:limit]
	}
	return agents, hasMore, nil
}

// ListSchedulable returns the agents the scheduler considers for an
// organization: is_agent set, a supported frequency, and the
// frequency-appropriate schedule field populated. The vestigial active flag
// deliberately does not gate here.
func (s *AgentService) ListSchedulable(ctx context.Context, orgID string) ([]model.Agent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+agentColumns+` FROM agents
		 WHERE organization_id = $1
		   AND is_agent = true
		   AND frequency IN ($2, $3, $4)
		   AND ((frequency = $2 AND schedule_time IS NOT NULL)
		     OR (frequency IN ($3, $4) AND day_time IS NOT NULL))
		 ORDER BY id`,
		orgID, model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly,
	)
	if err != nil {
		return nil, fmt.Errorf("list schedulable agents for organization %s: %w", orgID, err)
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedulable agents: %w", err)
	}
	return agents, nil
}

// MarkTriggered records a confirmed successful trigger. Called only by the
// dispatcher after the external call succeeds.
func (s *AgentService) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE agents SET last_triggered_at = $1, updated_at = now() WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("mark agent %s triggered: %w", id, err)
	}
	return nil
}

func (s *AgentService) Update(ctx context.Context, agent *model.Agent) error {
	_, err := s.db.Exec(ctx,
		`UPDATE agents SET name = $1, frequency = $2, day_time = $3, schedule_time = $4,
		 is_agent = $5, active = $6, updated_at = now() WHERE id = $7`,
		agent.Name, agent.Frequency, agent.DayTime, agent.ScheduleTime,
		agent.IsAgent, agent.Active, agent.ID,
	)
	if err != nil {
		return fmt.Errorf("update agent %s: %w", agent.ID, err)
	}
	return nil
}

func (s *AgentService) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete agent %s: %w", id, err)
	}
	return nil
}
