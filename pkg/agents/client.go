package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foundry_cli/pkg/auth"
	"foundry_cli/pkg/fault"
	"foundry_cli/pkg/logging"
)

const (
	// DefaultAPIVersion is the agent service's data-plane version.
	DefaultAPIVersion = "v1"
	// DefaultTimeout bounds a single HTTP round-trip, not a whole run.
	DefaultTimeout = 60 * time.Second
	// defaultPollInterval paces run status checks.
	defaultPollInterval = 500 * time.Millisecond
)

// Client drives the agent service's thread/run protocol.
type Client struct {
	endpoint     string
	apiVersion   string
	cred         auth.Credential
	httpClient   *http.Client
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAPIVersion overrides the service API version.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient injects the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPollInterval overrides how often run status is checked.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = interval
	}
}

// NewClient creates an agent service client bound to a project endpoint.
// No network traffic happens at construction time.
func NewClient(endpoint string, cred auth.Credential, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fault.Errorf(fault.ClientConstruction, "building agent client", "endpoint is required")
	}
	if cred == nil {
		return nil, fault.Errorf(fault.ClientConstruction, "building agent client", "credential is required")
	}

	c := &Client{
		endpoint:     strings.TrimRight(endpoint, "/"),
		apiVersion:   DefaultAPIVersion,
		cred:         cred,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	logging.Debug("agent client configured",
		"endpoint", c.endpoint,
		"api_version", c.apiVersion,
		"credential", cred.Name())

	return c, nil
}

// CreateThread creates a new conversation thread with no prior history.
func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var thread Thread
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return nil, err
	}
	if thread.ID == "" {
		return nil, fault.Errorf(fault.ResponseShape, "POST /threads", "response carries no thread id")
	}
	return &thread, nil
}

// CreateMessage posts one message with a single text content part to a
// thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, role, text string) (*ThreadMessage, error) {
	body := createMessageRequest{
		Role:    role,
		Content: []messageContentPart{{Type: "text", Text: text}},
	}

	var msg ThreadMessage
	path := "/threads/" + url.PathEscape(threadID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateRun starts a run binding the thread to the given agent.
func (c *Client) CreateRun(ctx context.Context, threadID, agentID string) (*Run, error) {
	var run Run
	path := "/threads/" + url.PathEscape(threadID) + "/runs"
	if err := c.do(ctx, http.MethodPost, path, createRunRequest{AssistantID: agentID}, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var run Run
	path := "/threads/" + url.PathEscape(threadID) + "/runs/" + url.PathEscape(runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateAndProcessRun starts a run and blocks until it reaches a terminal
// status, polling at the client's interval. A run that ends in any terminal
// status other than completed is an error carrying the service's last_error.
func (c *Client) CreateAndProcessRun(ctx context.Context, threadID, agentID string) (*Run, error) {
	run, err := c.CreateRun(ctx, threadID, agentID)
	if err != nil {
		return nil, err
	}

	for !run.Status.Terminal() {
		logging.Debug("waiting for run", "run_id", run.ID, "status", run.Status)
		select {
		case <-ctx.Done():
			return nil, fault.Wrap(fault.RemoteCall, "processing run", ctx.Err())
		case <-time.After(c.pollInterval):
		}

		run, err = c.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return nil, err
		}
	}

	if run.Status != RunStatusCompleted {
		if run.LastError != nil {
			return nil, fault.Errorf(fault.RemoteCall, "processing run", "run %s ended %s: %s", run.ID, run.Status, run.LastError.Message)
		}
		return nil, fault.Errorf(fault.RemoteCall, "processing run", "run %s ended %s", run.ID, run.Status)
	}

	return run, nil
}

// ListMessages lists all messages on a thread, in the order the service
// returns them.
func (c *Client) ListMessages(ctx context.Context, threadID string) (*MessageList, error) {
	var list MessageList
	path := "/threads/" + url.PathEscape(threadID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteThread removes a thread on the service side.
func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	var status deletionStatus
	path := "/threads/" + url.PathEscape(threadID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &status); err != nil {
		return err
	}
	logging.Debug("thread deleted", "thread_id", status.ID, "deleted", status.Deleted)
	return nil
}

// ListAgents enumerates agents visible to the authenticated identity. One
// listing call is made; its data array is consumed as-is.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var list agentList
	if err := c.do(ctx, http.MethodGet, "/assistants", nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// do sends one request and decodes the response into out. Every request
// carries the api-version query parameter and the client's credential.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fault.Wrap(fault.ClientConstruction, op, fmt.Errorf("failed to marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	if logging.DebugEnabled() && len(payload) > 0 {
		var prettyJSON bytes.Buffer
		if err := json.Indent(&prettyJSON, payload, "", "  "); err == nil {
			logging.Debug("agent request body", "op", op, "json", prettyJSON.String())
		} else {
			logging.Debug("agent request body (raw)", "op", op, "json", string(payload))
		}
	}

	query := url.Values{"api-version": {c.apiVersion}}
	requestURL := c.endpoint + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return fault.Wrap(fault.ClientConstruction, op, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.cred.Apply(req); err != nil {
		return fault.Wrap(fault.RemoteCall, op, err)
	}

	logging.Debug("sending agent request", "op", op, "url", requestURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fault.Wrap(fault.RemoteCall, op, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fault.Wrap(fault.RemoteCall, op, fmt.Errorf("failed to read response: %w", err))
	}

	logging.Debug("agent response received",
		"op", op,
		"status_code", resp.StatusCode,
		"response_size", len(respBody))

	if logging.DebugEnabled() && len(respBody) > 0 {
		var prettyJSON bytes.Buffer
		if err := json.Indent(&prettyJSON, respBody, "", "  "); err == nil {
			logging.Debug("agent response body", "op", op, "json", prettyJSON.String())
		} else {
			logging.Debug("agent response body (raw)", "op", op, "json", string(respBody))
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var envelope apiError
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Message != "" {
			return fault.Errorf(fault.RemoteCall, op, "service error (status %d): %s", resp.StatusCode, envelope.Error.Message)
		}
		return fault.Errorf(fault.RemoteCall, op, "service returned status %d: %s", resp.StatusCode, bodyPreview(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fault.Wrap(fault.ResponseShape, op, fmt.Errorf("failed to parse response: %w", err))
		}
	}

	return nil
}

func bodyPreview(body []byte) string {
	preview := strings.TrimSpace(string(body))
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return preview
}
