package contract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/usecase/contract"
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

func newSelector(t *testing.T, llm adapter.LLM) *contract.Selector {
	t.Helper()
	prompts, err := prompt.New()
	gt.NoError(t, err)
	return contract.NewSelector(llm, prompts, "gemini-2.5-flash")
}

func TestComputeContextLayers(t *testing.T) {
	tests := []struct {
		intent model.Intent
		want   model.ContextLayers
	}{
		{model.IntentSingleMeeting, model.ContextLayers{SingleMeeting: true}},
		{model.IntentMultiMeeting, model.ContextLayers{MultiMeeting: true}},
		{model.IntentProductKnowledge, model.ContextLayers{ProductSSOT: true}},
		{model.IntentDocumentSearch, model.ContextLayers{Documents: true}},
		{model.IntentRefuse, model.ContextLayers{}},
		{model.IntentClarify, model.ContextLayers{}},
	}

	for _, tt := range tests {
		t.Run(tt.intent.String(), func(t *testing.T) {
			gt.V(t, contract.ComputeContextLayers(tt.intent)).Equal(tt.want)
		})
	}
}

func TestSelectAnswerContract(t *testing.T) {
	ctx := context.Background()

	t.Run("keyword hit returns immediately with static constraints", func(t *testing.T) {
		// The mock LLM errors if called; a keyword hit must not reach it
		s := newSelector(t, &mockLLM{})

		sel, _, err := s.SelectAnswerContract(ctx, "What did they say about pricing?",
			model.IntentSingleMeeting, model.ContextLayers{SingleMeeting: true})
		gt.NoError(t, err)
		gt.V(t, sel.Contract).Equal(model.ContractExtractiveFact)
		gt.V(t, sel.Method).Equal(model.SelectByKeyword)
		gt.V(t, sel.Constraints.RequiresEvidence).Equal(true)
		gt.V(t, sel.Constraints.Mode).Equal(model.SSOTNone)
	})

	t.Run("action items beat summary keyword order", func(t *testing.T) {
		s := newSelector(t, &mockLLM{})

		sel, _, err := s.SelectAnswerContract(ctx, "List the action items",
			model.IntentSingleMeeting, model.ContextLayers{SingleMeeting: true})
		gt.NoError(t, err)
		gt.V(t, sel.Contract).Equal(model.ContractActionItems)
	})

	t.Run("LLM fallback constrained to valid list", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return `{"contract":"QUOTE_SELECTION"}`, nil
		}}
		s := newSelector(t, llm)

		sel, usage, err := s.SelectAnswerContract(ctx, "anything the customer felt strongly about?",
			model.IntentSingleMeeting, model.ContextLayers{SingleMeeting: true})
		gt.NoError(t, err)
		gt.V(t, sel.Contract).Equal(model.ContractQuoteSelection)
		gt.V(t, sel.Method).Equal(model.SelectByLLM)
		gt.V(t, usage["contract_select"]).NotEqual("")
	})

	t.Run("invalid LLM output defaults to general response", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return `{"contract":"PRODUCT_SPEC"}`, nil
		}}
		s := newSelector(t, llm)

		// PRODUCT_SPEC is authoritative and not valid for single-meeting;
		// the default must never escalate authority
		sel, _, err := s.SelectAnswerContract(ctx, "hmm tell me things",
			model.IntentSingleMeeting, model.ContextLayers{SingleMeeting: true})
		gt.NoError(t, err)
		gt.V(t, sel.Contract).Equal(model.ContractGeneralResponse)
	})

	t.Run("layer-denied keyword contract is not selected", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return "", errors.New("api down")
		}}
		s := newSelector(t, llm)

		// The summary keyword would hit, but single-meeting data is off;
		// selection must fall through to the default
		sel, _, err := s.SelectAnswerContract(ctx, "Summarize the meeting",
			model.IntentSingleMeeting, model.ContextLayers{})
		gt.NoError(t, err)
		gt.V(t, sel.Contract).Equal(model.ContractGeneralResponse)
		gt.V(t, sel.Method).Equal(model.SelectByDefault)
	})

	t.Run("LLM cannot pick a layer-denied contract", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			gt.S(t, input.Messages[0].Content).NotContains("MEETING_SUMMARY")
			return `{"contract":"MEETING_SUMMARY"}`, nil
		}}
		s := newSelector(t, llm)

		sel, _, err := s.SelectAnswerContract(ctx, "hmm tell me things",
			model.IntentSingleMeeting, model.ContextLayers{})
		gt.NoError(t, err)
		gt.V(t, sel.Contract).Equal(model.ContractGeneralResponse)
	})

	t.Run("LLM error defaults to general response", func(t *testing.T) {
		llm := &mockLLM{generateFunc: func(ctx context.Context, input adapter.GenerateInput) (string, error) {
			return "", errors.New("api down")
		}}
		s := newSelector(t, llm)

		sel, _, err := s.SelectAnswerContract(ctx, "hmm tell me things",
			model.IntentSingleMeeting, model.ContextLayers{SingleMeeting: true})
		gt.NoError(t, err)
		gt.V(t, sel.Contract).Equal(model.ContractGeneralResponse)
		gt.V(t, sel.Method).Equal(model.SelectByDefault)
	})
}

func TestChainPlanners(t *testing.T) {
	t.Run("single keyword does not chain", func(t *testing.T) {
		chain, err := contract.SelectSingleMeetingChain("Summarize the call", model.ContractMeetingSummary)
		gt.NoError(t, err)
		gt.A(t, chain.Steps).Length(1)
		gt.V(t, chain.Primary).Equal(model.ContractMeetingSummary)
	})

	t.Run("explicit conjunction chains summary and action items", func(t *testing.T) {
		chain, err := contract.SelectSingleMeetingChain(
			"Summarize the call and pull the action items", model.ContractMeetingSummary)
		gt.NoError(t, err)
		gt.V(t, chain.Steps).Equal([]model.AnswerContract{model.ContractMeetingSummary, model.ContractActionItems})
		gt.V(t, chain.Primary).Equal(model.ContractMeetingSummary)
	})

	t.Run("multi meeting defaults to pattern analysis", func(t *testing.T) {
		chain, err := contract.SelectMultiMeetingChain("Find all meetings that mention Walmart")
		gt.NoError(t, err)
		gt.A(t, chain.Steps).Length(1)
		gt.V(t, chain.Primary).Equal(model.ContractPatternAnalysis)
	})

	t.Run("compare over time chains into trend comparison", func(t *testing.T) {
		chain, err := contract.SelectMultiMeetingChain("Compare how pricing came up over time")
		gt.NoError(t, err)
		gt.V(t, chain.Steps).Equal([]model.AnswerContract{model.ContractPatternAnalysis, model.ContractTrendComparison})
		gt.V(t, chain.Primary).Equal(model.ContractTrendComparison)
	})

	t.Run("planned chains never escalate authority", func(t *testing.T) {
		for _, q := range []string{
			"Summarize the call and pull the action items",
			"Summarize the meeting and pick quotes",
		} {
			chain, err := contract.SelectSingleMeetingChain(q, model.ContractMeetingSummary)
			gt.NoError(t, err)
			gt.NoError(t, chain.Validate())
		}
	})
}
