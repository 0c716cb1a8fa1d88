package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hluaguo/ponopush/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second

	// NoResponse is returned when the service answers without message text.
	NoResponse = "No response"

	// FallbackMessage is the draft used when the request fails outright.
	FallbackMessage = "Failed to get commit message from OpenAI"
)

type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	doer      openai.HTTPDoer

	// err is a setup failure reported by every Complete call, so a bad
	// endpoint degrades to the fallback draft like any request failure.
	err error
}

type Option func(*Client)

// WithTimeout overrides DefaultTimeout. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient sets the transport used for requests.
func WithHTTPClient(doer openai.HTTPDoer) Option {
	return func(c *Client) { c.doer = doer }
}

// endpointDoer sends every request to one fixed URL. go-openai derives the
// request URL from a base URL, while the configured endpoint is the full
// chat completions URL.
type endpointDoer struct {
	endpoint *url.URL
	next     openai.HTTPDoer
}

func (d *endpointDoer) Do(req *http.Request) (*http.Response, error) {
	u := *d.endpoint
	req.URL = &u
	req.Host = u.Host
	return d.next.Do(req)
}

func New(cfg config.APIConfig, opts ...Option) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("API token not configured. Run: ponopush config api.token <token>")
	}

	c := &Client{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   DefaultTimeout,
		doer:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	endpoint, err := url.Parse(cfg.URL)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		c.err = fmt.Errorf("invalid API url %q", cfg.URL)
		return c, nil
	}

	clientCfg := openai.DefaultConfig(cfg.Token)
	clientCfg.BaseURL = strings.TrimSuffix(cfg.URL, "/chat/completions")
	clientCfg.HTTPClient = &endpointDoer{endpoint: endpoint, next: c.doer}
	c.client = openai.NewClientWithConfig(clientCfg)

	return c, nil
}

// Complete sends prompt as a single user message and returns the first
// choice's text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.err != nil {
		return "", fmt.Errorf("AI request failed: %w", c.err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
	// go-openai refuses max_tokens for reasoning models.
	if isReasoningModel(c.model) {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("AI request failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return NoResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// isReasoningModel uses the same prefixes go-openai checks before sending.
func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
