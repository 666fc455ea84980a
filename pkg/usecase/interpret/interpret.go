// Package interpret turns questions that defeated deterministic
// classification into clarification proposals. It proposes, it never
// decides: whatever the model's confidence, the result is CLARIFY and
// nothing is auto-executed.
package interpret

import (
	"context"
	"fmt"
	"strings"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/utils/llmjson"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

const maxAlternatives = 3

// Confidence bands only shape the clarification message, never execution
const (
	highConfidence   = 0.8
	mediumConfidence = 0.5
)

var proposableIntents = []model.Intent{
	model.IntentSingleMeeting, model.IntentMultiMeeting,
	model.IntentProductKnowledge, model.IntentExternalResearch,
	model.IntentDocumentSearch, model.IntentGeneralHelp,
}

var proposableContracts = []model.AnswerContract{
	model.ContractMeetingSummary, model.ContractExtractiveFact,
	model.ContractQuoteSelection, model.ContractActionItems,
	model.ContractPatternAnalysis, model.ContractTrendComparison,
	model.ContractProductExplanation, model.ContractDraftAssist,
	model.ContractGeneralResponse,
}

// Interpreter generates non-executing interpretation proposals via LLM
type Interpreter struct {
	llm     adapter.LLM
	prompts *prompt.Registry
	model   string
}

// New creates an Interpreter using the given model for proposals
func New(llm adapter.LLM, prompts *prompt.Registry, modelName string) *Interpreter {
	return &Interpreter{llm: llm, prompts: prompts, model: modelName}
}

// Interpret produces a CLARIFY classification carrying a proposal for the
// ambiguous question. LLM or parse failures degrade to CLARIFY with
// confidence 0 and a diagnostic reason; they never surface as errors that
// would block the pipeline, and never default to an executable intent.
func (i *Interpreter) Interpret(ctx context.Context, question, failureReason, threadContext string) (*model.Classification, model.PromptUsage, error) {
	text, usage, err := i.prompts.Render(prompt.Interpret, map[string]any{
		"Question":      question,
		"FailureReason": failureReason,
		"ThreadContext": threadContext,
		"Intents":       proposableIntents,
		"Contracts":     proposableContracts,
	})
	if err != nil {
		return nil, nil, err
	}

	raw, err := i.llm.GenerateText(ctx, adapter.GenerateInput{
		Model:       i.model,
		Messages:    []adapter.Message{{Role: adapter.RoleUser, Content: text}},
		Temperature: adapter.Temp(0.2),
	})
	if err != nil {
		logging.From(ctx).Warn("interpretation call failed", "error", err)
		return failedClarify("interpretation unavailable: " + err.Error()), usage, nil
	}

	var parsed struct {
		ProposedIntent   string   `json:"proposedIntent"`
		ProposedContract string   `json:"proposedContract"`
		Confidence       float64  `json:"confidence"`
		PartialAnswer    string   `json:"partialAnswer"`
		Alternatives     []string `json:"alternatives"`
	}
	if err := llmjson.Unmarshal(ctx, raw, &parsed); err != nil {
		return failedClarify("interpretation returned unparsable output"), usage, nil
	}

	interp := &model.Interpretation{
		ProposedIntent:   model.Intent(parsed.ProposedIntent),
		ProposedContract: model.AnswerContract(parsed.ProposedContract),
		Confidence:       clamp01(parsed.Confidence),
		PartialAnswer:    parsed.PartialAnswer,
		Alternatives:     parsed.Alternatives,
	}

	// Proposals outside the closed enums fall back to the general members;
	// they must never pass through unvalidated.
	if interp.ProposedIntent.Validate() != nil || !proposable(interp.ProposedIntent) {
		interp.ProposedIntent = model.IntentGeneralHelp
	}
	if interp.ProposedContract.Validate() != nil {
		interp.ProposedContract = model.ContractGeneralResponse
	}
	if len(interp.Alternatives) > maxAlternatives {
		interp.Alternatives = interp.Alternatives[:maxAlternatives]
	}
	interp.Message = buildMessage(interp)

	return &model.Classification{
		Intent:         model.IntentClarify,
		Method:         model.MethodLLMInterpretation,
		Confidence:     interp.Confidence,
		Reason:         failureReason,
		Interpretation: interp,
	}, usage, nil
}

func proposable(intent model.Intent) bool {
	for _, p := range proposableIntents {
		if p == intent {
			return true
		}
	}
	return false
}

func failedClarify(reason string) *model.Classification {
	return &model.Classification{
		Intent:     model.IntentClarify,
		Method:     model.MethodLLMInterpretation,
		Confidence: 0,
		Reason:     reason,
		Interpretation: &model.Interpretation{
			ProposedIntent:   model.IntentGeneralHelp,
			ProposedContract: model.ContractGeneralResponse,
			Message:          "I couldn't work out what you're asking. Could you rephrase the question?",
		},
	}
}

// buildMessage shapes the clarification text by confidence band. The band
// changes the wording only; at every level the user must confirm.
func buildMessage(interp *model.Interpretation) string {
	switch {
	case interp.Confidence >= highConfidence:
		return fmt.Sprintf("It sounds like you're asking about %s. Should I go ahead with that?",
			describeIntent(interp.ProposedIntent))
	case interp.Confidence >= mediumConfidence:
		msg := fmt.Sprintf("I think you might be asking about %s, but I'm not sure.",
			describeIntent(interp.ProposedIntent))
		if len(interp.Alternatives) > 0 {
			msg += " Did you mean one of these?\n- " + strings.Join(interp.Alternatives, "\n- ")
		}
		return msg
	default:
		return "I couldn't work out what you're asking. Could you rephrase the question?"
	}
}

func describeIntent(intent model.Intent) string {
	switch intent {
	case model.IntentSingleMeeting:
		return "a specific meeting"
	case model.IntentMultiMeeting:
		return "patterns across meetings"
	case model.IntentProductKnowledge:
		return "the product"
	case model.IntentExternalResearch:
		return "external research"
	case model.IntentDocumentSearch:
		return "a document"
	default:
		return "general assistance"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
