package agents

import (
	"context"
	"strings"

	"foundry_cli/pkg/fault"
	"foundry_cli/pkg/logging"
)

// MessageView is one listed message flattened to its text fragments, in
// wire order. Fragments without a text value are omitted; empty strings
// are kept.
type MessageView struct {
	Role    string   `json:"role"`
	Content []string `json:"content"`
}

// InvokeResult is the normalized outcome of one agent invocation.
// AgentResponse joins every assistant text fragment with newlines, in
// encounter order, and is empty when no assistant message exists.
type InvokeResult struct {
	ThreadID      string        `json:"thread_id,omitempty"`
	RunID         string        `json:"run_id,omitempty"`
	Messages      []MessageView `json:"messages"`
	AgentResponse string        `json:"agent_response"`
}

// Invoke drives the four-step protocol to get an agent's reply to a prompt:
// create a thread, post the user message, run the agent to completion, and
// list the thread's messages. A failure at any step aborts the sequence;
// the thread is not cleaned up.
func (c *Client) Invoke(ctx context.Context, agentID, prompt string) (*InvokeResult, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, fault.Errorf(fault.ClientConstruction, "invoking agent", "agent id is required")
	}

	thread, err := c.CreateThread(ctx)
	if err != nil {
		return nil, err
	}
	logging.Debug("thread created", "thread_id", thread.ID)

	if _, err := c.CreateMessage(ctx, thread.ID, RoleUser, prompt); err != nil {
		return nil, err
	}
	logging.Debug("user message posted", "thread_id", thread.ID)

	run, err := c.CreateAndProcessRun(ctx, thread.ID, agentID)
	if err != nil {
		return nil, err
	}
	logging.Debug("run finished", "run_id", run.ID, "status", run.Status)

	list, err := c.ListMessages(ctx, thread.ID)
	if err != nil {
		return nil, err
	}

	return normalize(thread, run, list), nil
}

// normalize flattens the listed messages into the fixed local result shape.
func normalize(thread *Thread, run *Run, list *MessageList) *InvokeResult {
	result := &InvokeResult{
		ThreadID: thread.ID,
		Messages: make([]MessageView, 0, len(list.Data)),
	}
	if run != nil {
		result.RunID = run.ID
	}

	var fragments []string
	for _, msg := range list.Data {
		view := MessageView{
			Role:    msg.Role,
			Content: make([]string, 0, len(msg.Content)),
		}
		for _, part := range msg.Content {
			if part.Text == nil {
				continue
			}
			view.Content = append(view.Content, part.Text.Value)
			if msg.Role == RoleAssistant {
				fragments = append(fragments, part.Text.Value)
			}
		}
		result.Messages = append(result.Messages, view)
	}

	result.AgentResponse = strings.Join(fragments, "\n")
	return result
}
