package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"

	// The messages API requires max_tokens; used when the caller sets none
	anthropicDefaultMaxTokens = 2048
)

// AnthropicClient implements the LLM port for claude-* models over the
// messages HTTP API
type AnthropicClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

type AnthropicOption func(*AnthropicClient)

// WithAnthropicEndpoint overrides the API endpoint, used by tests
func WithAnthropicEndpoint(endpoint string) AnthropicOption {
	return func(c *AnthropicClient) {
		c.endpoint = endpoint
	}
}

// NewAnthropic creates a Claude-backed provider
func NewAnthropic(apiKey string, opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:     apiKey,
		endpoint:   anthropicEndpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AnthropicClient) GenerateText(ctx context.Context, input GenerateInput) (string, error) {
	type reqMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	body := map[string]any{
		"model":      input.Model,
		"max_tokens": maxTokens,
	}

	// System messages ride in a dedicated field, not the messages array
	messages := make([]reqMessage, 0, len(input.Messages))
	for _, msg := range input.Messages {
		if msg.Role == RoleSystem {
			body["system"] = msg.Content
			continue
		}
		messages = append(messages, reqMessage{Role: string(msg.Role), Content: msg.Content})
	}
	body["messages"] = messages
	if input.Temperature != nil {
		body["temperature"] = *input.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal anthropic request")
	}

	raw, err := postWithRetry(ctx, c.httpClient, c.endpoint, payload, map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	})
	if err != nil {
		return "", goerr.Wrap(err, "anthropic request failed", goerr.V("model", input.Model))
	}

	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to parse anthropic response")
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", goerr.New("empty response from anthropic", goerr.V("model", input.Model))
}
