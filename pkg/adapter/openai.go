package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/goerr/v2"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIClient implements the LLM port for gpt-* / o4-* models over the
// chat-completions HTTP API
type OpenAIClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

type OpenAIOption func(*OpenAIClient)

// WithOpenAIEndpoint overrides the API endpoint, used by tests and gateways
func WithOpenAIEndpoint(endpoint string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.endpoint = endpoint
	}
}

// NewOpenAI creates an OpenAI-backed provider
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:     apiKey,
		endpoint:   openAIEndpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OpenAIClient) GenerateText(ctx context.Context, input GenerateInput) (string, error) {
	type reqMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	body := map[string]any{
		"model": input.Model,
	}
	messages := make([]reqMessage, 0, len(input.Messages))
	for _, msg := range input.Messages {
		messages = append(messages, reqMessage{Role: string(msg.Role), Content: msg.Content})
	}
	body["messages"] = messages
	if input.Temperature != nil {
		body["temperature"] = *input.Temperature
	}
	if input.MaxTokens > 0 {
		body["max_tokens"] = input.MaxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal openai request")
	}

	raw, err := postWithRetry(ctx, c.httpClient, c.endpoint, payload, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		return "", goerr.Wrap(err, "openai request failed", goerr.V("model", input.Model))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to parse openai response")
	}
	if len(parsed.Choices) == 0 {
		return "", goerr.New("empty response from openai", goerr.V("model", input.Model))
	}

	return parsed.Choices[0].Message.Content, nil
}

// postWithRetry issues a JSON POST, retrying transport errors and 5xx
// responses with exponential backoff. 4xx responses are permanent.
func postWithRetry(ctx context.Context, client *http.Client, endpoint string, payload []byte, headers map[string]string) ([]byte, error) {
	var result []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 500 {
			return goerr.New("server error", goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(goerr.New("client error",
				goerr.V("status", resp.StatusCode), goerr.V("body", string(body))))
		}

		result = body
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return result, nil
}
