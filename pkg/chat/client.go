package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"

	"foundry_cli/pkg/fault"
	"foundry_cli/pkg/logging"
)

const (
	// DefaultAPIVersion matches the service version the tool was written
	// against.
	DefaultAPIVersion = "2024-02-01"
	// DefaultTimeout bounds one completion round-trip.
	DefaultTimeout = 60 * time.Second
)

// Client sends single-turn chat completions to a deployed model.
type Client struct {
	client openai.Client
}

type clientOptions struct {
	apiVersion string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*clientOptions)

// WithAPIVersion overrides the service API version.
func WithAPIVersion(version string) Option {
	return func(o *clientOptions) {
		o.apiVersion = version
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithHTTPClient injects the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// New creates a completion client bound to an endpoint, authenticating with
// an explicit API key. No network traffic happens at construction time.
func New(endpoint, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fault.Errorf(fault.ClientConstruction, "building chat client", "endpoint is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fault.Errorf(fault.ClientConstruction, "building chat client", "api key is required")
	}

	o := clientOptions{
		apiVersion: DefaultAPIVersion,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	requestOpts := []option.RequestOption{
		azure.WithEndpoint(endpoint, o.apiVersion),
		azure.WithAPIKey(apiKey),
		option.WithHTTPClient(o.httpClient),
		// One request, one response. Surfacing the first failure beats
		// hiding it behind the SDK's default retry policy.
		option.WithMaxRetries(0),
	}

	logging.Debug("chat client configured",
		"endpoint", endpoint,
		"api_version", o.apiVersion,
		"api_key", logging.MaskSecret(apiKey))

	return &Client{client: openai.NewClient(requestOpts...)}, nil
}

// CompletionRequest describes one single-turn completion.
type CompletionRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Complete sends exactly one chat completion carrying a single user message
// and returns the normalized result.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Result, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}

	logging.Debug("sending completion request",
		"model", req.Model,
		"max_tokens", req.MaxTokens,
		"temperature", req.Temperature)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fault.Wrap(fault.RemoteCall, "creating chat completion", err)
	}

	result := &Result{
		ID:      resp.ID,
		Model:   resp.Model,
		Choices: make([]Choice, 0, len(resp.Choices)),
	}
	for _, choice := range resp.Choices {
		result.Choices = append(result.Choices, Choice{
			Message: Message{
				Role:    string(choice.Message.Role),
				Content: choice.Message.Content,
			},
		})
	}

	logging.Debug("completion received",
		"response_id", result.ID,
		"model", result.Model,
		"choices_count", len(result.Choices))

	return result, nil
}

func buildParams(req CompletionRequest) (openai.ChatCompletionNewParams, error) {
	if strings.TrimSpace(req.Model) == "" {
		return openai.ChatCompletionNewParams{}, fault.Errorf(fault.ClientConstruction, "creating chat completion", "model is required")
	}

	// Generation parameters are always sent explicitly, defaults included,
	// so the service never substitutes its own.
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	}, nil
}
