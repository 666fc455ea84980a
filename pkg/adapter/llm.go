package adapter

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrUnknownModel = goerr.New("unknown model")
)

// MessageRole is the speaker of one LLM message
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of an LLM conversation
type Message struct {
	Role    MessageRole
	Content string
}

// GenerateInput is the provider-agnostic request shape. Temperature is a
// pointer so 0 (deterministic composition) is distinguishable from unset.
type GenerateInput struct {
	Model       string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
}

// LLM is the single text-generation port every module calls. Providers are
// substituted behind it so retries and vendor differences never leak into
// business logic.
type LLM interface {
	GenerateText(ctx context.Context, input GenerateInput) (string, error)
}

// Temp returns a pointer to t, for GenerateInput.Temperature literals
func Temp(t float64) *float64 {
	return &t
}

// modelPrefixes maps model-name prefixes to provider keys
var modelPrefixes = []struct {
	prefix   string
	provider string
}{
	{"gemini-", "gemini"},
	{"gpt-", "openai"},
	{"o4-", "openai"},
	{"claude-", "anthropic"},
}

// Router dispatches GenerateText calls to a concrete provider by model-name
// lookup. An unknown model is a hard error: failing fast beats silently
// routing to the wrong vendor.
type Router struct {
	providers map[string]LLM
}

// NewRouter creates an empty router. Register providers before use.
func NewRouter() *Router {
	return &Router{providers: make(map[string]LLM)}
}

// Register attaches a provider under its key ("gemini", "openai", "anthropic")
func (r *Router) Register(key string, provider LLM) {
	r.providers[key] = provider
}

// GenerateText routes the call to the provider owning the model name
func (r *Router) GenerateText(ctx context.Context, input GenerateInput) (string, error) {
	for _, mp := range modelPrefixes {
		if !strings.HasPrefix(input.Model, mp.prefix) {
			continue
		}
		provider, ok := r.providers[mp.provider]
		if !ok {
			return "", goerr.Wrap(ErrUnknownModel, "provider not configured",
				goerr.V("model", input.Model), goerr.V("provider", mp.provider))
		}
		return provider.GenerateText(ctx, input)
	}

	return "", goerr.Wrap(ErrUnknownModel, "no provider for model", goerr.V("model", input.Model))
}
