package compose

import (
	"context"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/utils/llmjson"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// ExtractAnswer answers a question strictly from transcript evidence.
// WasFound=false is a normal result: when the transcript doesn't answer the
// question, or when the only matching chunks merely share a proper noun
// with it, the engine says so instead of guessing.
func (e *Engine) ExtractAnswer(ctx context.Context, question string, chunks []model.TranscriptChunk) (*model.ExtractedAnswer, model.PromptUsage, error) {
	logger := logging.From(ctx)
	usage := model.PromptUsage{}

	search, searchUsage, err := e.SearchChunks(ctx, question, chunks, 10)
	if err != nil {
		return nil, usage, err
	}
	usage.Merge(searchUsage)

	switch search.Tier {
	case TierNone:
		return &model.ExtractedAnswer{WasFound: false}, usage, nil
	case TierProperNounOnly:
		// Guardrail: don't present content that only shares a name with
		// the question
		logger.Info("extractive answer refused", "reason", "proper-noun-only matches")
		return &model.ExtractedAnswer{WasFound: false}, usage, nil
	}

	text, renderUsage, err := e.prompts.Render(prompt.ExtractAnswer, map[string]any{
		"Question": question,
		"Chunks":   formatChunks(search.Chunks),
	})
	if err != nil {
		return nil, usage, err
	}
	usage.Merge(renderUsage)

	raw, err := e.llm.GenerateText(ctx, adapter.GenerateInput{
		Model:       e.model,
		Messages:    []adapter.Message{{Role: adapter.RoleUser, Content: text}},
		Temperature: adapter.Temp(0),
	})
	if err != nil {
		return nil, usage, err
	}

	var answer model.ExtractedAnswer
	if err := llmjson.Unmarshal(ctx, raw, &answer); err != nil {
		return nil, usage, err
	}

	// A found answer without evidence is not extractive; demote it
	if answer.WasFound && answer.Evidence == "" {
		logger.Warn("answer demoted to not-found, no evidence supplied")
		answer = model.ExtractedAnswer{WasFound: false}
	}

	return &answer, usage, nil
}
