package chat

// ModelInfo is one entry in the built-in model catalog.
type ModelInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// ListModels returns the static catalog of deployable chat models. The
// service exposes no data-plane listing call, so the tool ships a fixed
// catalog and performs no network traffic here.
func ListModels() []ModelInfo {
	return []ModelInfo{
		{Name: "gpt-4", Model: "gpt-4"},
		{Name: "gpt-3.5-turbo", Model: "gpt-3.5-turbo"},
	}
}
