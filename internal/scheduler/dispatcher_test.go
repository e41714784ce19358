package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/model"
)

// ---------- Fakes ----------

type fakeOrgStore struct {
	orgs []model.Organization
	err  error
}

func (f *fakeOrgStore) ListAll(ctx context.Context) ([]model.Organization, error) {
	return f.orgs, f.err
}

type fakeAgentStore struct {
	mu      sync.Mutex
	agents  map[string][]model.Agent
	listErr map[string]error
	markErr error
	marked  map[string]time.Time
}

func newFakeAgentStore() *fakeAgentStore {
	return &fakeAgentStore{
		agents:  map[string][]model.Agent{},
		listErr: map[string]error{},
		marked:  map[string]time.Time{},
	}
}

func (f *fakeAgentStore) ListSchedulable(ctx context.Context, orgID string) ([]model.Agent, error) {
	if err := f.listErr[orgID]; err != nil {
		return nil, err
	}
	return f.agents[orgID], nil
}

func (f *fakeAgentStore) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked[id] = at
	return nil
}

func (f *fakeAgentStore) markedAt(id string) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.marked[id]
	return at, ok
}

type fakeRunLog struct {
	mu      sync.Mutex
	entries []model.CronLogEntry
}

func (f *fakeRunLog) Record(ctx context.Context, entry *model.CronLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeRunLog) byStatus(status string) []model.CronLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CronLogEntry
	for _, e := range f.entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// agentStatuses returns the entry statuses recorded for one agent, in order.
func (f *fakeRunLog) agentStatuses(agentID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.entries {
		if e.AgentID == agentID {
			out = append(out, e.Status)
		}
	}
	return out
}

type fakeClient struct {
	mu         sync.Mutex
	err        error
	calls      []TriggerRequest
	panicAgent string
}

func (f *fakeClient) TriggerURL(req TriggerRequest) string {
	if req.AgentName == f.panicAgent {
		panic("url construction blew up")
	}
	return fmt.Sprintf("http://agents.test/agent/run?agent_name=%s&organization_id=%s&session_id=%s",
		req.AgentName, req.OrganizationID, req.SessionID)
}

func (f *fakeClient) Trigger(ctx context.Context, req TriggerRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, req)
	return nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ---------- Helpers ----------

// tickTime is 06:00 local; with a 3h window the dispatch window is 03:00-06:00.
var tickTime = time.Date(2026, 3, 10, 6, 0, 0, 0, time.Local)

func newTestDispatcher(orgs *fakeOrgStore, agents *fakeAgentStore, runLog *fakeRunLog, client *fakeClient) *Dispatcher {
	d := NewDispatcher(orgs, agents, runLog, client, zerolog.Nop(), 3*time.Hour, "run scheduled analysis")
	d.now = func() time.Time { return tickTime }
	return d
}

func dailyAgent(id, org, scheduleTime string) model.Agent {
	return model.Agent{
		ID:             id,
		OrganizationID: org,
		Name:           id,
		Frequency:      model.FrequencyDaily,
		ScheduleTime:   strPtr(scheduleTime),
		IsAgent:        true,
	}
}

// ---------- Tests ----------

func TestRunTick_TriggersDueAgent(t *testing.T) {
	orgs := &fakeOrgStore{orgs: []model.Organization{{ID: "org-1", Name: "Acme"}}}
	agents := newFakeAgentStore()
	agents.agents["org-1"] = []model.Agent{dailyAgent("agent-1", "org-1", "05:00")}
	runLog := &fakeRunLog{}
	client := &fakeClient{}

	d := newTestDispatcher(orgs, agents, runLog, client)
	d.RunTick(context.Background())
	d.Drain()

	assert.Equal(t, 1, client.callCount())

	statuses := runLog.agentStatuses("agent-1")
	require.Equal(t, []string{model.CronStatusSelected, model.CronStatusTriggered, model.CronStatusSuccess}, statuses)

	at, ok := agents.markedAt("agent-1")
	require.True(t, ok, "last_triggered_at should be updated after success")
	assert.Equal(t, tickTime, at)

	completed := runLog.byStatus(model.CronStatusCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, 1, completed[0].AgentsChecked)
	assert.Equal(t, 1, completed[0].AgentsTriggered)
	assert.Equal(t, 0, completed[0].AgentsSkipped)
}

func TestRunTick_SessionIDConsistentAcrossEntries(t *testing.T) {
	orgs := &fakeOrgStore{orgs: []model.Organization{{ID: "org-1"}}}
	agents := newFakeAgentStore()
	agents.agents["org-1"] = []model.Agent{dailyAgent("agent-1", "org-1", "05:00")}
	runLog := &fakeRunLog{}
	client := &fakeClient{}

	d := newTestDispatcher(orgs, agents, runLog, client)
	d.RunTick(context.Background())
	d.Drain()

	triggered := runLog.byStatus(model.CronStatusTriggered)
	success := runLog.byStatus(model.CronStatusSuccess)
	require.Len(t, triggered, 1)
	require.Len(t, success, 1)
	assert.NotEmpty(t, triggered[0].SessionID)
	assert.Equal(t, triggered[0].SessionID, success[0].SessionID)
	assert.Contains(t, triggered[0].APIURL, triggered[0].SessionID)
}

func TestRunTick_SkipsOutOfWindowAgent(t *testing.T) {
	orgs := &fakeOrgStore{orgs: []model.Organization{{ID: "org-1"}}}
	agents := newFakeAgentStore()
	agents.agents["org-1"] = []model.Agent{dailyAgent("agent-1", "org-1", "12:00")}
	runLog := &fakeRunLog{}
	client := &fakeClient{}

	d := newTestDispatcher(orgs, agents, runLog, client)
	d.RunTick(context.Background())
	d.Drain()

	assert.Equal(t, 0, client.callCount())

	statuses := runLog.agentStatuses("agent-1")
	require.Equal(t, []string{model.CronStatusSelected, model.CronStatusSkipped}, statuses)

	skipped := runLog.byStatus(model.CronStatusSkipped)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].SkipReason, "not in window")
	assert.Equal(t, "03:00-06:00", skipped[0].Window)

	_, ok := agents.markedAt("agent-1")
	assert.False(t, ok)
}

func TestRunTick_TriggerFailureRecordedWithoutBookkeeping(t *testing.T) {
	orgs := &fakeOrgStore{orgs: []model.Organization{{ID: "org-1"}}}
	agents := newFakeAgentStore()
	agents.agents["org-1"] = []model.Agent{dailyAgent("agent-1", "org-1", "05:00")}
	runLog := &fakeRunLog{}
	client := &fakeClient{err: errors.New("connection refused")}

	d := newTestDispatcher(orgs, agents, runLog, client)
	d.RunTick(context.Background())
	d.Drain()

	statuses := runLog.agentStatuses("agent-1")
	require.Equal(t, []string{model.CronStatusSelected, model.CronStatusTriggered, model.CronStatusFailure}, statuses)

	failures := runLog.byStatus(model.CronStatusFailure)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "connection refused")

	// No retry within the tick, and the idempotence timestamp stays untouched
	// so the next in-window tick naturally retries.
	_, ok := agents.markedAt("agent-1")
	assert.False(t, ok)
}

func TestRunTick_PanicOnOneAgentDoesNotAbortBatch(t *testing.T) {
	orgs := &fakeOrgStore{orgs: []model.Organization{{ID: "org-1"}}}
	agents := newFakeAgentStore()
	agents.agents["org-1"] = []model.Agent{
		dailyAgent("agent-1", "org-1", "05:00"),
		dailyAgent("agent-2", "org-1", "05:00"),
		dailyAgent("agent-3", "org-1", "05:00"),
	}
	runLog := &fakeRunLog{}
	client := &fakeClient{panicAgent: "agent-2"}

	d := newTestDispatcher(orgs, agents, runLog, client)
	d.RunTick(context.Background())
	d.Drain()

	// agent-2 blew up after selection; the other two completed normally.
	assert.Equal(t, 2, client.callCount())
	assert.Equal(t, []string{model.CronStatusSelected, model.CronStatusTriggered, model.CronStatusSuccess}, runLog.agentStatuses("agent-1"))
	assert.Equal(t, []string{model.CronStatusSelected, model.CronStatusFailure}, runLog.agentStatuses("agent-2"))
	assert.Equal(t, []string{model.CronStatusSelected, model.CronStatusTriggered, model.CronStatusSuccess}, runLog.agentStatuses("agent-3"))

	completed := runLog.byStatus(model.CronStatusCompleted)
	require.Len(t, completed, 1)
}

func TestRunTick_OrganizationQueryFailureEndsTick(t *testing.T) {
	orgs := &fakeOrgStore{err: errors.New("db unavailable")}
	runLog := &fakeRunLog{}

	d := newTestDispatcher(orgs, newFakeAgentStore(), runLog, &fakeClient{})
	d.RunTick(context.Background())
	d.Drain()

	failures := runLog.byStatus(model.CronStatusFailure)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "organization query failed")
	assert.Empty(t, runLog.byStatus(model.CronStatusCompleted))
}

func TestRunTick_AgentQueryFailureSkipsOrganizationOnly(t *testing.T) {
	orgs := &fakeOrgStore{orgs: []model.Organization{{ID: "org-1"}, {ID: "org-2"}}}
	agents := newFakeAgentStore()
	agents.listErr["org-1"] = errors.New("relation does not exist")
	agents.agents["org-2"] = []model.Agent{dailyAgent("agent-1", "org-2", "05:00")}
	runLog := &fakeRunLog{}
	client := &fakeClient{}

	d := newTestDispatcher(orgs, agents, runLog, client)
	d.RunTick(context.Background())
	d.Drain()

	failures := runLog.byStatus(model.CronStatusFailure)
	require.Len(t, failures, 1)
	assert.Equal(t, "org-1", failures[0].OrganizationID)

	assert.Equal(t, 1, client.callCount())
	require.Len(t, runLog.byStatus(model.CronStatusCompleted), 1)
}

func TestRunTick_MarkTriggeredFailureSurfacesAsFailure(t *testing.T) {
	orgs := &fakeOrgStore{orgs: []model.Organization{{ID: "org-1"}}}
	agents := newFakeAgentStore()
	agents.agents["org-1"] = []model.Agent{dailyAgent("agent-1", "org-1", "05:00")}
	agents.markErr = errors.New("deadlock detected")
	runLog := &fakeRunLog{}

	d := newTestDispatcher(orgs, agents, runLog, &fakeClient{})
	d.RunTick(context.Background())
	d.Drain()

	failures := runLog.byStatus(model.CronStatusFailure)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "bookkeeping update failed")
}

func TestRunTick_SnapshotsScheduleFields(t *testing.T) {
	orgs := &fakeOrgStore{orgs: []model.Organization{{ID: "org-1"}}}
	agents := newFakeAgentStore()
	weekly := model.Agent{
		ID:             "agent-1",
		OrganizationID: "org-1",
		Name:           "weekly-report",
		Frequency:      model.FrequencyWeekly,
		DayTime:        strPtr("W-3"),
		ScheduleTime:   strPtr("09:00"),
		IsAgent:        true,
	}
	agents.agents["org-1"] = []model.Agent{weekly}
	runLog := &fakeRunLog{}

	d := newTestDispatcher(orgs, agents, runLog, &fakeClient{})
	d.RunTick(context.Background())
	d.Drain()

	selected := runLog.byStatus(model.CronStatusSelected)
	require.Len(t, selected, 1)
	assert.Equal(t, "weekly-report", selected[0].AgentName)
	assert.Equal(t, model.FrequencyWeekly, selected[0].Frequency)
	assert.Equal(t, "W-3", selected[0].DayTime)
	assert.Equal(t, "09:00", selected[0].ScheduleTime)
	assert.Equal(t, "03:00-06:00", selected[0].Window)
}
