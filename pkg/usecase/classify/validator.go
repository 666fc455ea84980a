package classify

import (
	"context"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/utils/llmjson"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// validateWeakMatch asks the LLM whether a single weak signal really fits
// the question. Every failure path fails open (trusts the deterministic
// result) so transient LLM or API trouble never blocks the pipeline.
func (c *Classifier) validateWeakMatch(ctx context.Context, question string, category model.Intent, signalName string) (bool, model.PromptUsage) {
	logger := logging.From(ctx)

	text, usage, err := c.prompts.Render(prompt.ClassifyValidate, map[string]any{
		"Question": question,
		"Category": category,
		"Signal":   signalName,
	})
	if err != nil {
		logger.Warn("weak-match validator prompt failed, failing open", "error", err)
		return true, nil
	}

	raw, err := c.llm.GenerateText(ctx, adapter.GenerateInput{
		Model:       c.model,
		Messages:    []adapter.Message{{Role: adapter.RoleUser, Content: text}},
		Temperature: adapter.Temp(0),
	})
	if err != nil {
		logger.Warn("weak-match validator call failed, failing open", "error", err)
		return true, usage
	}

	var parsed struct {
		Matches bool `json:"matches"`
	}
	if err := llmjson.Unmarshal(ctx, raw, &parsed); err != nil {
		logger.Warn("weak-match validator output unparsable, failing open")
		return true, usage
	}

	logger.Debug("weak-match validated", "category", category, "signal", signalName, "matches", parsed.Matches)
	return parsed.Matches, usage
}
