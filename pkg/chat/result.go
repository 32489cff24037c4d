package chat

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Choice is one completion choice returned by the service.
type Choice struct {
	Message Message `json:"message"`
}

// Result is the normalized completion result. Choice order and message
// role/content are preserved verbatim from the service response.
type Result struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// GeneratedText returns the first choice's message content. The second
// return is false when there are no choices or the content is empty.
func (r *Result) GeneratedText() (string, bool) {
	if len(r.Choices) == 0 {
		return "", false
	}
	text := r.Choices[0].Message.Content
	return text, text != ""
}
