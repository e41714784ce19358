// Package agentclient calls the external agent-execution service that runs
// an agent's analysis when the scheduler dispatches it.
package agentclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pulseboard/pulseboard/internal/scheduler"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// TriggerURL builds the full request URL for a trigger call. Exposed
// separately so the dispatcher can record it before the call settles.
func (c *Client) TriggerURL(req scheduler.TriggerRequest) string {
	q := url.Values{}
	q.Set("agent_name", req.AgentName)
	q.Set("organization_id", req.OrganizationID)
	q.Set("query", req.Query)
	q.Set("session_id", req.SessionID)
	return c.baseURL + "/agent/run?" + q.Encode()
}

// triggerResponse is the subset of the agent server's reply we inspect. A 2xx
// status with a non-empty error field is still a failure.
type triggerResponse struct {
	Error string `json:"error"`
}

// Trigger issues the agent-execution call. Network errors, non-2xx statuses,
// and application-level error payloads all count as failures.
func (c *Client) Trigger(ctx context.Context, req scheduler.TriggerRequest) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TriggerURL(req), nil)
	if err != nil {
		return fmt.Errorf("build trigger request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("trigger call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read trigger response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("trigger call returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var tr triggerResponse
	if err := json.Unmarshal(body, &tr); err == nil && tr.Error != "" {
		return fmt.Errorf("agent server error: %s", tr.Error)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
