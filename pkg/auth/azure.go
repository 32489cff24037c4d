package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"foundry_cli/pkg/logging"
)

// DefaultScope is the token scope for the AI data plane.
const DefaultScope = "https://ai.azure.com/.default"

// refreshWindow is how close to expiry a cached token may get before a
// fresh one is requested.
const refreshWindow = 2 * time.Minute

func init() {
	Register(Info{
		Kind:        KindAzureIdentity,
		Name:        "Azure identity",
		Description: "Token from the default Azure credential chain (environment, managed identity, CLI)",
	}, func(opts Options) (Credential, error) {
		return AzureIdentity(opts.Scopes...)
	})
}

// AzureIdentity authenticates with tokens acquired through the default
// Azure credential chain. Chain construction probes the local environment
// only; no token is requested until the first Apply.
func AzureIdentity(scopes ...string) (Credential, error) {
	chain, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("building default credential chain: %w", err)
	}
	return NewTokenCredential(chain, scopes...), nil
}

// NewTokenCredential adapts an azcore token source into a Credential,
// caching acquired tokens until they near expiry.
func NewTokenCredential(source azcore.TokenCredential, scopes ...string) Credential {
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	return &tokenCredential{source: source, scopes: scopes}
}

type tokenCredential struct {
	source azcore.TokenCredential
	scopes []string

	mu    sync.Mutex
	token azcore.AccessToken
}

func (c *tokenCredential) Name() string {
	return string(KindAzureIdentity)
}

func (c *tokenCredential) Apply(req *http.Request) error {
	token, err := c.currentToken(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *tokenCredential) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Token != "" && !c.isExpiringSoon(refreshWindow) {
		return c.token.Token, nil
	}

	token, err := c.source.GetToken(ctx, policy.TokenRequestOptions{Scopes: c.scopes})
	if err != nil {
		return "", fmt.Errorf("acquiring token: %w", err)
	}

	logging.Debug("token acquired",
		"scopes", strings.Join(c.scopes, " "),
		"expires_on", token.ExpiresOn,
		"token", logging.MaskSecret(token.Token))

	c.token = token
	return token.Token, nil
}

// isExpiringSoon returns true if the cached token expires within the given
// duration.
func (c *tokenCredential) isExpiringSoon(within time.Duration) bool {
	if c.token.ExpiresOn.IsZero() {
		return false
	}
	return time.Now().Add(within).After(c.token.ExpiresOn)
}
