package agents

// Message roles used by the thread protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RunStatus is the server-side state of a run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusExpired        RunStatus = "expired"
)

// Terminal reports whether the run has finished processing.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusCancelled, RunStatusFailed, RunStatusExpired:
		return true
	}
	return false
}

// Thread is a server-side conversation container. The local process holds
// only the ID.
type Thread struct {
	ID        string `json:"id"`
	Object    string `json:"object,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// TextContent is the text payload of one message content part.
type TextContent struct {
	Value string `json:"value"`
}

// MessageContent is one content part of a thread message. Parts carrying
// no text (images, files) have a nil Text.
type MessageContent struct {
	Type string       `json:"type"`
	Text *TextContent `json:"text,omitempty"`
}

// ThreadMessage is one message on a thread as returned by the service.
type ThreadMessage struct {
	ID        string           `json:"id"`
	Object    string           `json:"object,omitempty"`
	ThreadID  string           `json:"thread_id,omitempty"`
	Role      string           `json:"role"`
	Content   []MessageContent `json:"content"`
	CreatedAt int64            `json:"created_at,omitempty"`
}

// MessageList is the service's message listing envelope.
type MessageList struct {
	Object  string          `json:"object,omitempty"`
	Data    []ThreadMessage `json:"data"`
	FirstID string          `json:"first_id,omitempty"`
	LastID  string          `json:"last_id,omitempty"`
	HasMore bool            `json:"has_more,omitempty"`
}

// RunError carries the service's explanation for a failed run.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Run is a server-side execution record of an agent against a thread.
type Run struct {
	ID        string    `json:"id"`
	Object    string    `json:"object,omitempty"`
	ThreadID  string    `json:"thread_id,omitempty"`
	AgentID   string    `json:"assistant_id,omitempty"`
	Status    RunStatus `json:"status"`
	LastError *RunError `json:"last_error,omitempty"`
}

// Agent describes a pre-configured server-side agent. Name and Description
// are optional on the wire.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model,omitempty"`
}

// DisplayName returns the agent's name, defaulting when the service omits
// it.
func (a Agent) DisplayName() string {
	if a.Name == "" {
		return "Unknown"
	}
	return a.Name
}

// agentList is the service's agent listing envelope.
type agentList struct {
	Object  string  `json:"object,omitempty"`
	Data    []Agent `json:"data"`
	FirstID string  `json:"first_id,omitempty"`
	LastID  string  `json:"last_id,omitempty"`
	HasMore bool    `json:"has_more,omitempty"`
}

// createMessageRequest is the body for posting a message to a thread.
// Outbound content parts carry plain-string text, unlike inbound parts.
type createMessageRequest struct {
	Role    string               `json:"role"`
	Content []messageContentPart `json:"content"`
}

type messageContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// createRunRequest is the body for starting a run. The wire field keeps
// the service's assistant naming.
type createRunRequest struct {
	AssistantID string `json:"assistant_id"`
}

// deletionStatus is the service's acknowledgement of a delete call.
type deletionStatus struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// apiError is the service's error envelope.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
