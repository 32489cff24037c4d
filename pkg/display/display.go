package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"foundry_cli/pkg/agents"
	"foundry_cli/pkg/chat"
	"foundry_cli/pkg/logging"
)

const separatorWidth = 50

// replyStyle draws the response panel. No colors so piped output stays
// free of escape sequences.
var replyStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

// Displayer formats and prints tool output to a single writer.
type Displayer struct {
	out io.Writer
}

// NewDisplayer creates a displayer writing to out, normally stdout.
func NewDisplayer(out io.Writer) *Displayer {
	return &Displayer{out: out}
}

// DisplayChatRequest announces an inference request before it is sent.
func (d *Displayer) DisplayChatRequest(model, prompt string) {
	logging.Debug("Displaying chat request", "model", model, "prompt_length", len(prompt))

	fmt.Fprintf(d.out, "Making inference request with model: %s\n", model)
	fmt.Fprintf(d.out, "Prompt: %s\n", prompt)
	fmt.Fprintln(d.out, strings.Repeat("-", separatorWidth))
}

// DisplayCompletion prints the completion as indented JSON, followed by
// the generated text in a panel when the first choice carries any.
func (d *Displayer) DisplayCompletion(result *chat.Result) error {
	if err := d.displayJSON(result); err != nil {
		return err
	}

	text, ok := result.GeneratedText()
	if !ok {
		logging.Debug("Completion has no generated text", "id", result.ID)
		return nil
	}

	fmt.Fprintln(d.out, "\nGenerated text:")
	fmt.Fprintln(d.out, replyStyle.Render(text))
	return nil
}

// DisplayAgentRequest announces an agent invocation before it starts.
func (d *Displayer) DisplayAgentRequest(agentID, prompt string) {
	logging.Debug("Displaying agent request", "agent_id", agentID, "prompt_length", len(prompt))

	fmt.Fprintf(d.out, "Invoking agent: %s\n", agentID)
	fmt.Fprintf(d.out, "Prompt: %s\n", prompt)
	fmt.Fprintln(d.out, strings.Repeat("-", separatorWidth))
}

// DisplayInvocation prints the normalized invocation as indented JSON,
// followed by the agent's reply in a panel when one was produced.
func (d *Displayer) DisplayInvocation(result *agents.InvokeResult) error {
	if err := d.displayJSON(result); err != nil {
		return err
	}

	if result.AgentResponse == "" {
		logging.Debug("Invocation produced no agent response", "thread_id", result.ThreadID)
		return nil
	}

	fmt.Fprintln(d.out, "\nAgent Response:")
	fmt.Fprintln(d.out, replyStyle.Render(result.AgentResponse))
	return nil
}

// DisplayFetchingModels prints the model listing header.
func (d *Displayer) DisplayFetchingModels() {
	fmt.Fprintln(d.out, "Fetching available models...")
}

// DisplayModelList prints one line per model.
func (d *Displayer) DisplayModelList(models []chat.ModelInfo) {
	fmt.Fprintln(d.out, "\nAvailable models:")
	for _, m := range models {
		fmt.Fprintf(d.out, "- %s (%s)\n", m.Name, m.Model)
	}
}

// DisplayFetchingAgents prints the agent listing header.
func (d *Displayer) DisplayFetchingAgents() {
	fmt.Fprintln(d.out, "Fetching available agents...")
}

// DisplayAgentList prints one line per agent, with the description
// indented underneath when the service returned one.
func (d *Displayer) DisplayAgentList(list []agents.Agent) {
	fmt.Fprintln(d.out, "\nAvailable agents:")
	for _, a := range list {
		fmt.Fprintf(d.out, "- %s (ID: %s)\n", a.DisplayName(), a.ID)
		if a.Description != "" {
			fmt.Fprintf(d.out, "  Description: %s\n", a.Description)
		}
	}
}

func (d *Displayer) displayJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering response: %w", err)
	}
	fmt.Fprintln(d.out, "Response:")
	fmt.Fprintln(d.out, string(data))
	return nil
}
