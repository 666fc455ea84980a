package interpret_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/usecase/interpret"
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

func newInterpreter(t *testing.T, llm adapter.LLM) *interpret.Interpreter {
	t.Helper()
	prompts, err := prompt.New()
	gt.NoError(t, err)
	return interpret.New(llm, prompts, "gemini-2.5-flash")
}

func TestInterpretAlwaysClarifies(t *testing.T) {
	ctx := context.Background()

	t.Run("high confidence still clarifies", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return `{"proposedIntent":"single_meeting","proposedContract":"EXTRACTIVE_FACT","confidence":0.95,"alternatives":[]}`, nil
		}}
		c, usage, err := newInterpreter(t, llm).Interpret(ctx, "what about the pricing thing", "no deterministic match", "")
		gt.NoError(t, err)
		gt.V(t, c.Intent).Equal(model.IntentClarify)
		gt.V(t, c.Interpretation.ProposedIntent).Equal(model.IntentSingleMeeting)
		gt.S(t, c.Interpretation.Message).Contains("Should I go ahead")
		gt.V(t, usage["interpret"]).NotEqual("")
	})

	t.Run("invalid proposals fall back to general members", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return `{"proposedIntent":"billing","proposedContract":"PRICING_TOPIC","confidence":0.9}`, nil
		}}
		c, _, err := newInterpreter(t, llm).Interpret(ctx, "question", "reason", "")
		gt.NoError(t, err)
		gt.V(t, c.Intent).Equal(model.IntentClarify)
		gt.V(t, c.Interpretation.ProposedIntent).Equal(model.IntentGeneralHelp)
		gt.V(t, c.Interpretation.ProposedContract).Equal(model.ContractGeneralResponse)
	})

	t.Run("refuse and clarify are not proposable", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return `{"proposedIntent":"refuse","proposedContract":"GENERAL_RESPONSE","confidence":0.9}`, nil
		}}
		c, _, err := newInterpreter(t, llm).Interpret(ctx, "question", "reason", "")
		gt.NoError(t, err)
		gt.V(t, c.Interpretation.ProposedIntent).Equal(model.IntentGeneralHelp)
	})

	t.Run("LLM failure degrades to confidence zero clarify", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return "", errors.New("network timeout")
		}}
		c, _, err := newInterpreter(t, llm).Interpret(ctx, "question", "reason", "")
		gt.NoError(t, err)
		gt.V(t, c.Intent).Equal(model.IntentClarify)
		gt.V(t, c.Confidence).Equal(0.0)
		gt.S(t, c.Reason).Contains("interpretation unavailable")
	})

	t.Run("unparsable output degrades to confidence zero clarify", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return "I think the user wants a summary", nil
		}}
		c, _, err := newInterpreter(t, llm).Interpret(ctx, "question", "reason", "")
		gt.NoError(t, err)
		gt.V(t, c.Intent).Equal(model.IntentClarify)
		gt.V(t, c.Confidence).Equal(0.0)
	})

	t.Run("alternatives capped at three", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return `{"proposedIntent":"multi_meeting","proposedContract":"PATTERN_ANALYSIS","confidence":0.6,"alternatives":["a","b","c","d","e"]}`, nil
		}}
		c, _, err := newInterpreter(t, llm).Interpret(ctx, "question", "reason", "")
		gt.NoError(t, err)
		gt.A(t, c.Interpretation.Alternatives).Length(3)
		gt.S(t, c.Interpretation.Message).Contains("Did you mean")
	})
}
