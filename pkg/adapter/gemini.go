package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// GeminiClient implements the LLM port for gemini-* models via Vertex AI
type GeminiClient struct {
	client *genai.Client
}

// NewGemini creates a genai-backed provider
func NewGemini(ctx context.Context, projectID, location string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	return &GeminiClient{client: client}, nil
}

func (g *GeminiClient) GenerateText(ctx context.Context, input GenerateInput) (string, error) {
	config := &genai.GenerateContentConfig{}

	if input.Temperature != nil {
		temp := float32(*input.Temperature)
		config.Temperature = &temp
	}
	if input.MaxTokens > 0 {
		config.MaxOutputTokens = int32(input.MaxTokens)
	}

	contents := make([]*genai.Content, 0, len(input.Messages))
	for _, msg := range input.Messages {
		switch msg.Role {
		case RoleSystem:
			config.SystemInstruction = genai.NewContentFromText(msg.Content, "")
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, input.Model, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.V("model", input.Model))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", goerr.New("empty response from gemini", goerr.V("model", input.Model))
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}
