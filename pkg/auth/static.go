package auth

import (
	"fmt"
	"net/http"
	"strings"
)

func init() {
	Register(Info{
		Kind:           KindStaticToken,
		Name:           "Static token",
		Description:    "Pre-issued bearer token sent as an Authorization header",
		RequiresSecret: true,
	}, func(opts Options) (Credential, error) {
		return StaticToken(opts.StaticToken)
	})
}

// StaticToken authenticates requests with a pre-issued bearer token. The
// token is sent as-is; no refresh is attempted when it expires.
func StaticToken(token string) (Credential, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("static token is required")
	}
	return &staticTokenCredential{token: token}, nil
}

type staticTokenCredential struct {
	token string
}

func (c *staticTokenCredential) Name() string {
	return string(KindStaticToken)
}

func (c *staticTokenCredential) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	return nil
}
