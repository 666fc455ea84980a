package compose

import (
	"context"
	"fmt"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/utils/llmjson"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// DefaultMaxQuotes bounds how many quotes one selection returns
const DefaultMaxQuotes = 3

// QuoteResult carries the selected quotes, or a user-facing notice
// explaining why none were produced. An empty Quotes list always comes with
// a non-empty Notice; silence is not an option.
type QuoteResult struct {
	Quotes []model.SelectedQuote
	Notice string
}

// SelectRepresentativeQuotes picks customer-voice quotes from a transcript.
// Three gates run before any LLM call: the source must be a verbatim
// transcript, at least 70% of chunks must carry a known speaker, and at
// least one chunk must be the customer speaking. A failed gate yields zero
// quotes plus an explanation.
func (e *Engine) SelectRepresentativeQuotes(ctx context.Context, transcript *model.Transcript, chunks []model.TranscriptChunk, maxQuotes int) (*QuoteResult, model.PromptUsage, error) {
	logger := logging.From(ctx)
	usage := model.PromptUsage{}
	if maxQuotes <= 0 {
		maxQuotes = DefaultMaxQuotes
	}

	if len(chunks) == 0 {
		return &QuoteResult{Notice: "No transcript content is available for this meeting, so no quotes could be selected."}, usage, nil
	}

	if transcript.Source != model.SourceTranscript {
		logger.Info("quote selection suppressed", "reason", "informal notes source")
		return &QuoteResult{Notice: "This meeting record comes from informal notes rather than a verbatim transcript, so quotes can't be reliably attributed."}, usage, nil
	}

	if ratio := attributionRatio(chunks); ratio < model.AttributionRatioMin {
		logger.Info("quote selection suppressed", "reason", "low speaker attribution", "ratio", ratio)
		return &QuoteResult{Notice: fmt.Sprintf(
			"Only %.0f%% of this transcript has speaker attribution, below the %.0f%% needed to quote people accurately.",
			ratio*100, model.AttributionRatioMin*100)}, usage, nil
	}

	customer := customerChunks(chunks)
	if len(customer) == 0 {
		logger.Info("quote selection suppressed", "reason", "no customer chunks")
		return &QuoteResult{Notice: "No customer speech was identified in this transcript, so there are no customer quotes to select."}, usage, nil
	}

	text, renderUsage, err := e.prompts.Render(prompt.QuoteSelect, map[string]any{
		"Chunks":    formatChunks(customer),
		"MaxQuotes": maxQuotes,
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

	var parsed struct {
		Quotes []struct {
			Index  int    `json:"index"`
			Quote  string `json:"quote"`
			Reason string `json:"reason"`
		} `json:"quotes"`
	}
	if err := llmjson.Unmarshal(ctx, raw, &parsed); err != nil {
		return nil, usage, err
	}

	// Only quotes attributable to a customer chunk survive; anything the
	// model mapped to a different index is dropped, not repaired
	byIndex := make(map[int]bool, len(customer))
	for _, chunk := range customer {
		byIndex[chunk.ChunkIndex] = true
	}

	result := &QuoteResult{}
	for _, q := range parsed.Quotes {
		if !byIndex[q.Index] {
			logger.Warn("quote dropped, index is not a customer chunk", "index", q.Index)
			continue
		}
		if q.Quote == "" {
			continue
		}
		result.Quotes = append(result.Quotes, model.SelectedQuote{
			ChunkIndex:  q.Index,
			SpeakerRole: model.RoleCustomer,
			Quote:       q.Quote,
			Reason:      q.Reason,
		})
		if len(result.Quotes) >= maxQuotes {
			break
		}
	}

	if len(result.Quotes) == 0 {
		result.Notice = "No representative customer quotes could be selected from this transcript."
	}
	return result, usage, nil
}
