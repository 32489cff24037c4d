package auth

import (
	"fmt"
	"net/http"
	"strings"
)

func init() {
	Register(Info{
		Kind:           KindAPIKey,
		Name:           "API key",
		Description:    "Explicit data-plane key sent as an api-key header",
		RequiresSecret: true,
	}, func(opts Options) (Credential, error) {
		return APIKey(opts.APIKey)
	})
}

// APIKey authenticates requests with an explicit data-plane key.
func APIKey(key string) (Credential, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	return &apiKeyCredential{key: key}, nil
}

type apiKeyCredential struct {
	key string
}

func (c *apiKeyCredential) Name() string {
	return string(KindAPIKey)
}

func (c *apiKeyCredential) Apply(req *http.Request) error {
	req.Header.Set("api-key", c.key)
	return nil
}
