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

// ActionItemBuckets splits extracted items by confidence tier. Anything
// below the secondary band was dropped: precision over recall.
type ActionItemBuckets struct {
	Primary   []model.MeetingActionItem
	Secondary []model.MeetingActionItem
}

// In-meeting narration markers. Items whose evidence is the speaker
// narrating the meeting itself ("green room" talk) are noise, not
// commitments.
var presentMarkers = []string{
	"let me walk you through",
	"let me show you",
	"let me introduce",
	"sharing my screen",
	"share my screen",
	"as you can see",
	"pulling up",
	"i'm going to show",
	"i am going to show",
}

// Future-oriented markers rescue an item from the green-room filter
var futureMarkers = []string{
	"after the call",
	"after this call",
	"follow up",
	"follow-up",
	"next step",
	"will send",
	"i'll send",
	"we'll send",
	"by next",
	"tomorrow",
	"next week",
	"get back to you",
}

// ExtractActionItems proposes action items via LLM and then applies the
// deterministic pipeline: owner normalization against the attendee list,
// deadline normalization, the green-room filter, and confidence banding.
func (e *Engine) ExtractActionItems(ctx context.Context, transcript *model.Transcript, chunks []model.TranscriptChunk) (*ActionItemBuckets, model.PromptUsage, error) {
	logger := logging.From(ctx)

	attendeeNames := make([]string, 0, len(transcript.Attendees))
	for _, a := range transcript.Attendees {
		attendeeNames = append(attendeeNames, a.Name)
	}

	text, usage, err := e.prompts.Render(prompt.ActionItems, map[string]any{
		"Attendees":  strings.Join(attendeeNames, ", "),
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
		Items []struct {
			Action     string  `json:"action"`
			Owner      string  `json:"owner"`
			Type       string  `json:"type"`
			Deadline   string  `json:"deadline"`
			Evidence   string  `json:"evidence"`
			Confidence float64 `json:"confidence"`
		} `json:"items"`
	}
	if err := llmjson.Unmarshal(ctx, raw, &parsed); err != nil {
		return nil, usage, err
	}

	buckets := &ActionItemBuckets{}
	for _, raw := range parsed.Items {
		if raw.Confidence < model.SecondaryActionConfidence {
			logger.Debug("action item dropped below confidence floor",
				"action", raw.Action, "confidence", raw.Confidence)
			continue
		}

		if isGreenRoom(raw.Action, raw.Evidence) {
			logger.Debug("action item dropped by green-room filter", "action", raw.Action)
			continue
		}

		item := model.MeetingActionItem{
			Action:     raw.Action,
			Owner:      normalizeOwner(raw.Owner, attendeeNames),
			Type:       normalizeType(raw.Type),
			Deadline:   raw.Deadline,
			Evidence:   raw.Evidence,
			Confidence: raw.Confidence,
		}
		if strings.TrimSpace(item.Deadline) == "" {
			item.Deadline = model.DeadlineNotSpecified
		}

		if item.Confidence >= model.PrimaryActionConfidence {
			item.IsPrimary = true
			buckets.Primary = append(buckets.Primary, item)
		} else {
			buckets.Secondary = append(buckets.Secondary, item)
		}
	}

	logger.Info("action items extracted",
		"proposed", len(parsed.Items), "primary", len(buckets.Primary), "secondary", len(buckets.Secondary))
	return buckets, usage, nil
}

// isGreenRoom reports whether the item is in-meeting narration with no
// future-oriented language to rescue it
func isGreenRoom(action, evidence string) bool {
	text := strings.ToLower(action + " " + evidence)

	var present bool
	for _, marker := range presentMarkers {
		if strings.Contains(text, marker) {
			present = true
			break
		}
	}
	if !present {
		return false
	}

	for _, marker := range futureMarkers {
		if strings.Contains(text, marker) {
			return false
		}
	}
	return true
}

// normalizeOwner resolves the owner against canonical attendee names:
// exact match first, then a unique first-name match, otherwise the owner is
// left exactly as typed
func normalizeOwner(owner string, attendees []string) string {
	trimmed := strings.TrimSpace(owner)
	if trimmed == "" {
		return trimmed
	}
	lower := strings.ToLower(trimmed)

	for _, name := range attendees {
		if strings.ToLower(name) == lower {
			return name
		}
	}

	var firstNameMatches []string
	for _, name := range attendees {
		first, _, _ := strings.Cut(name, " ")
		if strings.ToLower(first) == lower {
			firstNameMatches = append(firstNameMatches, name)
		}
	}
	if len(firstNameMatches) == 1 {
		return firstNameMatches[0]
	}

	return trimmed
}

// normalizeType coerces the LLM's type string into the closed enum,
// defaulting to commitment
func normalizeType(t string) model.ActionItemType {
	switch model.ActionItemType(strings.ToLower(strings.TrimSpace(t))) {
	case model.ActionRequest:
		return model.ActionRequest
	case model.ActionBlocker:
		return model.ActionBlocker
	case model.ActionPlan:
		return model.ActionPlan
	case model.ActionScheduling:
		return model.ActionScheduling
	default:
		return model.ActionCommitment
	}
}
