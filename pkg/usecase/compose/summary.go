package compose

import (
	"context"
	"regexp"
	"strings"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/utils/llmjson"
)

const noneDetected = "None detected"

// Debug or meta text the model sometimes leaks into list items
var debugLine = regexp.MustCompile(`(?i)^\s*(debug|internal|note to self|as an ai\b)`)

// SummarizeMeeting produces the structured summary of one meeting.
// Generation runs at temperature 0; empty sections read "None detected" and
// are never invented, duplicated items are dropped across sections.
func (e *Engine) SummarizeMeeting(ctx context.Context, transcript *model.Transcript, chunks []model.TranscriptChunk) (*model.MeetingSummary, model.PromptUsage, error) {
	text, usage, err := e.prompts.Render(prompt.MeetingSummary, map[string]any{
		"CompanyName": transcript.CompanyName,
		"Transcript":  formatChunks(chunks),
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

	var summary model.MeetingSummary
	if err := llmjson.Unmarshal(ctx, raw, &summary); err != nil {
		return nil, usage, err
	}

	sanitizeSummary(&summary)
	return &summary, usage, nil
}

// sanitizeSummary applies the deterministic output rules: debug lines are
// stripped, an item may appear in only one section, and emptied sections
// read "None detected"
func sanitizeSummary(s *model.MeetingSummary) {
	seen := make(map[string]bool)

	clean := func(items []string) []string {
		var out []string
		for _, item := range items {
			item = strings.TrimSpace(item)
			if item == "" || debugLine.MatchString(item) {
				continue
			}
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
		if len(out) == 0 {
			return []string{noneDetected}
		}
		return out
	}

	s.FocusAreas = clean(s.FocusAreas)
	s.KeyTakeaways = clean(s.KeyTakeaways)
	s.RisksOrOpenQuestions = clean(s.RisksOrOpenQuestions)
	s.RecommendedNextSteps = clean(s.RecommendedNextSteps)

	if strings.TrimSpace(s.Purpose) == "" {
		s.Purpose = noneDetected
	}
}
