package answer

import (
	"strings"

	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/usecase/compose"
)

func formatSummary(tr *model.Transcript, s *model.MeetingSummary) string {
	var b strings.Builder
	title := s.Title
	if title == "" {
		title = "Meeting with " + tr.CompanyName
	}
	b.WriteString("*" + title + "*\n\n")
	b.WriteString("Purpose: " + s.Purpose + "\n")

	section := func(name string, items []string) {
		b.WriteString("\n" + name + ":\n")
		for _, item := range items {
			b.WriteString("- " + item + "\n")
		}
	}
	section("Focus areas", s.FocusAreas)
	section("Key takeaways", s.KeyTakeaways)
	section("Risks and open questions", s.RisksOrOpenQuestions)
	section("Recommended next steps", s.RecommendedNextSteps)

	return strings.TrimRight(b.String(), "\n")
}

func formatActionBuckets(buckets *compose.ActionItemBuckets) string {
	if len(buckets.Primary) == 0 && len(buckets.Secondary) == 0 {
		return "No action items came out of this meeting."
	}

	var b strings.Builder
	if len(buckets.Primary) > 0 {
		b.WriteString("Action items:\n")
		writeActionItems(&b, buckets.Primary)
	}
	if len(buckets.Secondary) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Possible action items (lower confidence):\n")
		writeActionItems(&b, buckets.Secondary)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStoredActions(items []model.MeetingActionItem) string {
	var primary, secondary []model.MeetingActionItem
	for _, item := range items {
		if item.IsPrimary {
			primary = append(primary, item)
		} else {
			secondary = append(secondary, item)
		}
	}
	return formatActionBuckets(&compose.ActionItemBuckets{Primary: primary, Secondary: secondary})
}

func writeActionItems(b *strings.Builder, items []model.MeetingActionItem) {
	for _, item := range items {
		b.WriteString("- " + item.Action)
		if item.Owner != "" {
			b.WriteString(" (" + item.Owner)
			if item.Deadline != model.DeadlineNotSpecified {
				b.WriteString(", " + item.Deadline)
			}
			b.WriteString(")")
		} else if item.Deadline != model.DeadlineNotSpecified {
			b.WriteString(" (" + item.Deadline + ")")
		}
		b.WriteString("\n")
	}
}

func formatQuotes(result *compose.QuoteResult) string {
	if len(result.Quotes) == 0 {
		return result.Notice
	}

	var b strings.Builder
	b.WriteString("What the customer said:\n")
	for _, q := range result.Quotes {
		b.WriteString("> " + q.Quote + "\n")
		if q.Reason != "" {
			b.WriteString("  (" + q.Reason + ")\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
