package compose

import (
	"context"
	"strings"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/utils/llmjson"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// ExtractInsights pulls structured insights out of a transcript: notable
// observations, question/answer pairs, and the customer's point-of-sale
// system when one is mentioned. Missing fields degrade to empty values
// rather than failing the extraction.
func (e *Engine) ExtractInsights(ctx context.Context, transcript *model.Transcript, chunks []model.TranscriptChunk) (*model.TranscriptInsights, model.PromptUsage, error) {
	text, usage, err := e.prompts.Render(prompt.Insights, map[string]any{
		"Transcript": formatChunks(chunks),
	})
	if err != nil {
		return nil, usage, err
	}

	raw, err := e.llm.GenerateText(ctx, adapter.GenerateInput{
		Model:       e.model,
		Messages:    []adapter.Message{{Role: adapter.RoleUser, Content: text}},
		Temperature: adapter.Temp(0),
	})
	if err != nil {
		return nil, usage, err
	}

	var parsed struct {
		Insights []string `json:"insights"`
		QAPairs  []struct {
			Question   string `json:"question"`
			Answer     string `json:"answer"`
			ChunkIndex int    `json:"chunkIndex"`
		} `json:"qaPairs"`
		POSSystem string `json:"posSystem"`
	}
	if err := llmjson.Unmarshal(ctx, raw, &parsed); err != nil {
		return nil, usage, err
	}

	insights := &model.TranscriptInsights{
		Insights:  parsed.Insights,
		POSSystem: strings.TrimSpace(parsed.POSSystem),
	}
	if insights.Insights == nil {
		insights.Insights = []string{}
	}
	for _, qa := range parsed.QAPairs {
		if strings.TrimSpace(qa.Question) == "" || strings.TrimSpace(qa.Answer) == "" {
			continue
		}
		insights.QAPairs = append(insights.QAPairs, model.QAPair{
			TranscriptID: transcript.ID,
			Question:     qa.Question,
			Answer:       qa.Answer,
			ChunkIndex:   qa.ChunkIndex,
		})
	}

	logging.From(ctx).Info("insights extracted",
		"transcript", transcript.ID,
		"insights", len(insights.Insights),
		"qaPairs", len(insights.QAPairs))
	return insights, usage, nil
}
