package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pulseboard/pulseboard/internal/metrics"
	"github.com/pulseboard/pulseboard/internal/model"
)

// OrganizationStore lists the tenants whose agents are considered each tick.
type OrganizationStore interface {
	ListAll(ctx context.Context) ([]model.Organization, error)
}

// AgentStore reads schedulable agents and records confirmed triggers.
type AgentStore interface {
	ListSchedulable(ctx context.Context, orgID string) ([]model.Agent, error)
	MarkTriggered(ctx context.Context, id string, at time.Time) error
}

// RunLog appends one immutable audit record per decision event.
type RunLog interface {
	Record(ctx context.Context, entry *model.CronLogEntry) error
}

// TriggerRequest parameterizes one external agent-execution call.
type TriggerRequest struct {
	AgentName      string
	OrganizationID string
	Query          string
	SessionID      string
}

// TriggerClient issues the external agent-execution call.
type TriggerClient interface {
	TriggerURL(req TriggerRequest) string
	Trigger(ctx context.Context, req TriggerRequest) error
}

// Dispatcher runs the per-tick evaluation loop: every organization's
// schedulable agents are decided sequentially, due agents are dispatched
// fire-and-forget, and every decision is written to the run log. A tick never
// returns an error — the scheduler must stay live for the next tick no matter
// what this one did.
type Dispatcher struct {
	orgs   OrganizationStore
	agents AgentStore
	runLog RunLog
	client TriggerClient
	logger zerolog.Logger

	windowLength time.Duration
	runQuery     string

	// now is swappable for tests.
	now func() time.Time

	// calls tracks in-flight trigger calls so Drain can wait them out at
	// shutdown. Completion entries may land after cron_completed; that entry
	// marks "decision phase done", not "all calls settled".
	calls errgroup.Group
}

func NewDispatcher(orgs OrganizationStore, agents AgentStore, runLog RunLog, client TriggerClient, logger zerolog.Logger, windowLength time.Duration, runQuery string) *Dispatcher {
	return &Dispatcher{
		orgs:         orgs,
		agents:       agents,
		runLog:       runLog,
		client:       client,
		logger:       logger.With().Str("component", "dispatcher").Logger(),
		windowLength: windowLength,
		runQuery:     runQuery,
		now:          time.Now,
	}
}

// tickCounters aggregates one run for the cron_completed summary entry.
type tickCounters struct {
	checked   int
	triggered int
	skipped   int
}

// RunTick executes one full dispatch pass.
func (d *Dispatcher) RunTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Interface("panic", r).Msg("tick aborted by panic")
			d.record(ctx, &model.CronLogEntry{
				Status:  model.CronStatusFailure,
				Message: fmt.Sprintf("tick aborted: %v", r),
			})
		}
	}()

	metrics.SchedulerTicksTotal.Inc()
	window := CurrentWindow(d.now(), d.windowLength)

	d.logger.Info().Str("window", window.String()).Msg("tick started")
	d.record(ctx, &model.CronLogEntry{
		Status:  model.CronStatusStarted,
		Window:  window.String(),
		Message: "scheduler tick started",
	})

	orgs, err := d.orgs.ListAll(ctx)
	if err != nil {
		d.logger.Error().Err(err).Msg("organization query failed, ending tick")
		d.record(ctx, &model.CronLogEntry{
			Status:  model.CronStatusFailure,
			Window:  window.String(),
			Message: fmt.Sprintf("organization query failed: %v", err),
		})
		return
	}

	var counters tickCounters
	for _, org := range orgs {
		agents, err := d.agents.ListSchedulable(ctx, org.ID)
		if err != nil {
			d.logger.Error().Err(err).Str("organization", org.ID).Msg("agent query failed, skipping organization")
			d.record(ctx, &model.CronLogEntry{
				Status:         model.CronStatusFailure,
				OrganizationID: org.ID,
				Window:         window.String(),
				Message:        fmt.Sprintf("agent query failed: %v", err),
			})
			continue
		}
		for _, agent := range agents {
			d.evaluateAgent(ctx, org, agent, window, &counters)
		}
	}

	d.logger.Info().
		Int("checked", counters.checked).
		Int("triggered", counters.triggered).
		Int("skipped", counters.skipped).
		Msg("tick completed")
	d.record(ctx, &model.CronLogEntry{
		Status:          model.CronStatusCompleted,
		Window:          window.String(),
		Message:         "scheduler tick completed",
		AgentsChecked:   counters.checked,
		AgentsTriggered: counters.triggered,
		AgentsSkipped:   counters.skipped,
	})
}

// Drain blocks until all outstanding trigger calls have settled.
func (d *Dispatcher) Drain() {
	_ = d.calls.Wait()
}

// evaluateAgent decides one agent and, when due, fires the external call
// without blocking the loop. A panic here is contained: one agent's failure
// must never abort the batch.
func (d *Dispatcher) evaluateAgent(ctx context.Context, org model.Organization, agent model.Agent, window Window, counters *tickCounters) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Interface("panic", r).Str("agent", agent.ID).Msg("agent evaluation panicked")
			d.record(ctx, d.agentEntry(org, agent, window, model.CronStatusFailure,
				fmt.Sprintf("evaluation panicked: %v", r)))
		}
	}()

	counters.checked++
	metrics.SchedulerAgentsChecked.Inc()
	d.record(ctx, d.agentEntry(org, agent, window, model.CronStatusSelected, "agent selected for evaluation"))

	decision := Decide(agent, d.now(), window)
	if !decision.Trigger {
		counters.skipped++
		metrics.SchedulerAgentsSkipped.Inc()
		d.logger.Debug().Str("agent", agent.ID).Str("reason", decision.SkipReason).Msg("agent skipped")
		entry := d.agentEntry(org, agent, window, model.CronStatusSkipped, "")
		entry.SkipReason = decision.SkipReason
		d.record(ctx, entry)
		return
	}

	req := TriggerRequest{
		AgentName:      agent.Name,
		OrganizationID: org.ID,
		Query:          d.runQuery,
		SessionID:      uuid.New().String(),
	}
	apiURL := d.client.TriggerURL(req)

	counters.triggered++
	metrics.SchedulerAgentsTriggered.Inc()
	d.logger.Info().Str("agent", agent.ID).Str("session_id", req.SessionID).Msg("triggering agent")
	entry := d.agentEntry(org, agent, window, model.CronStatusTriggered, "trigger dispatched")
	entry.APIURL = apiURL
	entry.SessionID = req.SessionID
	d.record(ctx, entry)

	d.calls.Go(func() error {
		d.completeTrigger(org, agent, window, req, apiURL)
		return nil
	})
}

// completeTrigger runs the external call and writes the terminal log entry.
// It deliberately does not use the tick context: the call outlives the
// decision loop and must be allowed to settle during shutdown drain.
func (d *Dispatcher) completeTrigger(org model.Organization, agent model.Agent, window Window, req TriggerRequest, apiURL string) {
	ctx := context.Background()

	if err := d.client.Trigger(ctx, req); err != nil {
		metrics.SchedulerTriggerFailures.Inc()
		d.logger.Error().Err(err).Str("agent", agent.ID).Str("session_id", req.SessionID).Msg("trigger call failed")
		entry := d.agentEntry(org, agent, window, model.CronStatusFailure, err.Error())
		entry.APIURL = apiURL
		entry.SessionID = req.SessionID
		d.record(ctx, entry)
		return
	}

	triggeredAt := d.now()
	if err := d.agents.MarkTriggered(ctx, agent.ID, triggeredAt); err != nil {
		// The agent ran but the idempotence bookkeeping is stale; surface it
		// loudly since the next tick may re-trigger.
		d.logger.Error().Err(err).Str("agent", agent.ID).Msg("last_triggered_at update failed after successful trigger")
		entry := d.agentEntry(org, agent, window, model.CronStatusFailure,
			fmt.Sprintf("trigger succeeded but bookkeeping update failed: %v", err))
		entry.APIURL = apiURL
		entry.SessionID = req.SessionID
		d.record(ctx, entry)
		return
	}

	d.logger.Info().Str("agent", agent.ID).Str("session_id", req.SessionID).Msg("trigger confirmed")
	entry := d.agentEntry(org, agent, window, model.CronStatusSuccess, "trigger confirmed")
	entry.APIURL = apiURL
	entry.SessionID = req.SessionID
	d.record(ctx, entry)
}

// agentEntry snapshots the agent's schedule fields into a log entry.
func (d *Dispatcher) agentEntry(org model.Organization, agent model.Agent, window Window, status, message string) *model.CronLogEntry {
	entry := &model.CronLogEntry{
		OrganizationID: org.ID,
		AgentID:        agent.ID,
		AgentName:      agent.Name,
		Status:         status,
		Frequency:      agent.Frequency,
		Window:         window.String(),
		Message:        message,
	}
	if agent.DayTime != nil {
		entry.DayTime = *agent.DayTime
	}
	if agent.ScheduleTime != nil {
		entry.ScheduleTime = *agent.ScheduleTime
	}
	return entry
}

// record writes a log entry, downgrading persistence failures to a log line.
// Losing an audit row must not stop the dispatch loop.
func (d *Dispatcher) record(ctx context.Context, entry *model.CronLogEntry) {
	if err := d.runLog.Record(ctx, entry); err != nil {
		d.logger.Error().Err(err).Str("status", entry.Status).Msg("cron log write failed")
	}
}
