package answer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/repository"
	"github.com/leverege/meetingmind/pkg/usecase/answer"
)

type mockLLM struct {
	generateFunc func(ctx context.Context, input adapter.GenerateInput) (string, error)
}

func (m *mockLLM) GenerateText(ctx context.Context, input adapter.GenerateInput) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, input)
	}
	return "", errors.New("not implemented")
}

func seedRepo() *repository.Memory {
	repo := repository.NewMemory()
	repo.Companies = []string{"Les Schwab", "Walmart"}

	repo.Transcripts["tr-les"] = &model.Transcript{
		ID:          "tr-les",
		CompanyName: "Les Schwab",
		Source:      model.SourceTranscript,
		Attendees: []model.Attendee{
			{Name: "Ryan Cooper", Role: model.RoleLeverege},
			{Name: "Dana Whitfield", Role: model.RoleCustomer},
		},
		MeetingDate: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	}
	repo.Chunks["tr-les"] = []model.TranscriptChunk{
		{TranscriptID: "tr-les", ChunkIndex: 0, SpeakerRole: model.RoleLeverege, SpeakerName: "Ryan Cooper", Text: "Thanks for joining, Dana."},
		{TranscriptID: "tr-les", ChunkIndex: 1, SpeakerRole: model.RoleCustomer, SpeakerName: "Dana Whitfield", Text: "Pricing flexibility is what we need most."},
		{TranscriptID: "tr-les", ChunkIndex: 2, SpeakerRole: model.RoleCustomer, SpeakerName: "Dana Whitfield", Text: "We run LS Retail as our POS today."},
	}
	repo.QAPairs["tr-les"] = []model.QAPair{
		{TranscriptID: "tr-les", Question: "What did they say about pricing in the meeting?", Answer: "Pricing flexibility is what they need most.", ChunkIndex: 1},
	}
	repo.ActionItems["tr-les"] = []model.MeetingActionItem{
		{Action: "Send updated pricing tiers", Owner: "Ryan Cooper", Type: model.ActionCommitment,
			Deadline: "Friday", Evidence: "I'll send updated tiers by Friday.", Confidence: 0.9, IsPrimary: true},
	}

	repo.Transcripts["tr-wal-1"] = &model.Transcript{
		ID: "tr-wal-1", CompanyName: "Walmart", Source: model.SourceTranscript,
		MeetingDate: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
	}
	repo.Chunks["tr-wal-1"] = []model.TranscriptChunk{
		{TranscriptID: "tr-wal-1", ChunkIndex: 0, SpeakerRole: model.RoleCustomer, SpeakerName: "Sam Ortiz", Text: "Pricing concerns come up in every regional review."},
	}
	repo.Transcripts["tr-wal-2"] = &model.Transcript{
		ID: "tr-wal-2", CompanyName: "Walmart", Source: model.SourceTranscript,
		MeetingDate: time.Date(2025, 5, 22, 0, 0, 0, 0, time.UTC),
	}
	repo.Chunks["tr-wal-2"] = []model.TranscriptChunk{
		{TranscriptID: "tr-wal-2", ChunkIndex: 2, SpeakerRole: model.RoleCustomer, SpeakerName: "Sam Ortiz", Text: "Our buyers flagged pricing again this quarter."},
	}

	return repo
}

func newPipeline(t *testing.T, llm adapter.LLM) *answer.Pipeline {
	t.Helper()
	prompts, err := prompt.New()
	gt.NoError(t, err)
	return answer.New(seedRepo(), llm, prompts, "gemini-2.5-flash")
}

func TestPipelineSummarize(t *testing.T) {
	ctx := context.Background()

	llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
		gt.S(t, input.Messages[0].Content).Contains("Meeting summary")
		return `{"title":"Les Schwab pricing review","purpose":"Review pricing options",
			"focusAreas":["Pricing"],"keyTakeaways":["Customer needs pricing flexibility"],
			"risksOrOpenQuestions":[],"recommendedNextSteps":["Send tiers"]}`, nil
	}}

	a, err := newPipeline(t, llm).Answer(ctx, &model.Request{
		ID: "req-1", Question: "Summarize yesterday's meeting", TranscriptID: "tr-les",
	})
	gt.NoError(t, err)
	gt.V(t, a.Intent).Equal(model.IntentSingleMeeting)
	gt.V(t, a.Contract).Equal(model.ContractMeetingSummary)
	gt.V(t, a.DataSource).Equal(model.DataSourceMeeting)
	gt.S(t, a.Text).Contains("Customer needs pricing flexibility")
	gt.S(t, a.Text).Contains("None detected")
	gt.V(t, a.PromptVersions["meeting_summary"]).NotEqual("")
}

func TestPipelineChainedSummaryAndActions(t *testing.T) {
	ctx := context.Background()

	llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
		if !strings.Contains(input.Messages[0].Content, "Meeting summary") {
			return "", errors.New("only the summary should need the LLM here")
		}
		return `{"title":"Recap","purpose":"Recap","focusAreas":["Pricing"],
			"keyTakeaways":["Flexibility matters"],"risksOrOpenQuestions":[],"recommendedNextSteps":[]}`, nil
	}}

	a, err := newPipeline(t, llm).Answer(ctx, &model.Request{
		ID: "req-2", Question: "Summarize the meeting and the action items", TranscriptID: "tr-les",
	})
	gt.NoError(t, err)

	// Two-step chain, summary is the primary contract on the audit trail
	gt.V(t, a.Contract).Equal(model.ContractMeetingSummary)
	gt.S(t, a.Text).Contains("Flexibility matters")
	// Stored action items serve the second step without a fresh extraction
	gt.S(t, a.Text).Contains("Send updated pricing tiers")
	gt.S(t, a.Text).Contains("Ryan Cooper")
}

func TestPipelineStoredQAPair(t *testing.T) {
	ctx := context.Background()

	// Everything on this path is deterministic; an LLM call is a bug
	llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
		return "", errors.New("no LLM call expected")
	}}

	a, err := newPipeline(t, llm).Answer(ctx, &model.Request{
		ID: "req-3", Question: "What did they say about pricing in the meeting?", TranscriptID: "tr-les",
	})
	gt.NoError(t, err)
	gt.V(t, a.Contract).Equal(model.ContractExtractiveFact)
	gt.S(t, a.Text).Contains("Pricing flexibility")
	gt.A(t, a.Evidence).Length(1)
	gt.V(t, a.Evidence[0].ChunkIndex).Equal(1)
}

func TestPipelineRefusal(t *testing.T) {
	ctx := context.Background()
	llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
		return "", errors.New("no LLM call expected")
	}}

	a, err := newPipeline(t, llm).Answer(ctx, &model.Request{
		ID: "req-4", Question: "What is Mike's salary?",
	})
	gt.NoError(t, err)
	gt.V(t, a.Intent).Equal(model.IntentRefuse)
	gt.V(t, a.Contract).Equal(model.ContractGeneralResponse)
	gt.V(t, a.DataSource).Equal(model.DataSourceNone)
	gt.S(t, a.Text).Contains("Compensation")
}

func TestPipelineCompoundSplit(t *testing.T) {
	ctx := context.Background()
	llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
		return "", errors.New("no LLM call expected")
	}}

	a, err := newPipeline(t, llm).Answer(ctx, &model.Request{
		ID: "req-5", Question: "Summarize the meeting and email it to the team", TranscriptID: "tr-les",
	})
	gt.NoError(t, err)
	gt.V(t, a.Intent).Equal(model.IntentClarify)
	gt.S(t, a.Text).Contains("meeting content")
	gt.S(t, a.Text).Contains("other request")
}

func TestPipelineMultiMeetingPattern(t *testing.T) {
	ctx := context.Background()

	llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
		content := input.Messages[0].Content
		switch {
		case strings.Contains(content, "Chunk relevance ranking"):
			// candidate labels are positions in the pooled candidate list
			return `{"rankings":[{"index":0,"score":0.9,"reason":"direct"},{"index":1,"score":0.8,"reason":"direct"}]}`, nil
		case strings.Contains(content, "Extractive answer"):
			return `{"answer":"Pricing concerns recur in every meeting.","evidence":"Pricing concerns come up in every regional review.","wasFound":true}`, nil
		}
		return "", errors.New("unexpected prompt")
	}}

	a, err := newPipeline(t, llm).Answer(ctx, &model.Request{
		ID: "req-6", Question: "How often do Walmart meetings mention pricing concerns?",
	})
	gt.NoError(t, err)
	gt.V(t, a.Intent).Equal(model.IntentMultiMeeting)
	gt.V(t, a.Contract).Equal(model.ContractPatternAnalysis)
	gt.V(t, a.DataSource).Equal(model.DataSourceMeetings)
	gt.S(t, a.Text).Contains("Across 2 meetings with Walmart")
	gt.A(t, a.Evidence).Length(1)
	gt.V(t, a.Evidence[0].ChunkIndex).Equal(0)
}

func TestPipelineAmbiguousClarifies(t *testing.T) {
	ctx := context.Background()

	llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
		gt.S(t, input.Messages[0].Content).Contains("Ambiguous question interpretation")
		return `{"proposedIntent":"single_meeting","proposedContract":"MEETING_SUMMARY","confidence":0.85,"alternatives":[]}`, nil
	}}

	a, err := newPipeline(t, llm).Answer(ctx, &model.Request{
		ID: "req-7", Question: "the thing from before",
	})
	gt.NoError(t, err)
	gt.V(t, a.Intent).Equal(model.IntentClarify)
	gt.V(t, a.DataSource).Equal(model.DataSourceNone)
	gt.S(t, a.Text).Contains("Should I go ahead")
	gt.V(t, a.PromptVersions["interpret"]).NotEqual("")
}

func TestPipelineDraftAssist(t *testing.T) {
	ctx := context.Background()

	llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
		gt.S(t, input.Messages[0].Content).Contains("Drafting assistance")
		return "Hi Dana,\n\nFollowing up on our conversation about pricing tiers.", nil
	}}

	a, err := newPipeline(t, llm).Answer(ctx, &model.Request{
		ID: "req-8", Question: "Draft a thank-you note for Dana",
	})
	gt.NoError(t, err)
	gt.V(t, a.Intent).Equal(model.IntentGeneralHelp)
	gt.V(t, a.Contract).Equal(model.ContractDraftAssist)
	gt.V(t, a.DataSource).Equal(model.DataSourceNone)
	gt.S(t, a.Text).Contains("Hi Dana")
	gt.V(t, a.PromptVersions["draft_assist"]).NotEqual("")
}
