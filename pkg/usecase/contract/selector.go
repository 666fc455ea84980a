// Package contract picks the answer contract (and, for compound requests,
// the contract chain) once an intent is fixed. Contracts are task-shaped:
// extraction, comparison, trend, drafting. Adding a contract per topic is an
// anti-pattern; the contract space stays bounded and auditable.
package contract

import (
	"context"
	"regexp"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/utils/llmjson"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// contractKeyword is one deterministic selector rule
type contractKeyword struct {
	contract model.AnswerContract
	re       *regexp.Regexp
}

// Keyword tables per intent, tried in order; the first hit wins and returns
// immediately with the contract's fixed constraints
var contractKeywords = map[model.Intent][]contractKeyword{
	model.IntentSingleMeeting: {
		{model.ContractActionItems, regexp.MustCompile(`(?i)\b(action items?|follow[- ]?ups?|next steps?|to[- ]?dos?)\b`)},
		{model.ContractQuoteSelection, regexp.MustCompile(`(?i)\b(quotes?|verbatim|exact words|in their (?:own )?words)\b`)},
		{model.ContractMeetingSummary, regexp.MustCompile(`(?i)\b(summar\w+|overview|recap|debrief)\b`)},
		{model.ContractExtractiveFact, regexp.MustCompile(`(?i)\b(what did|did they|say about|mention|who said)\b`)},
	},
	model.IntentMultiMeeting: {
		{model.ContractTrendComparison, regexp.MustCompile(`(?i)\b(trends?|over time|compared? (?:to|with|across)|changed?)\b`)},
		{model.ContractPatternAnalysis, regexp.MustCompile(`(?i)\b(patterns?|common|frequently|how often|mention)\b`)},
	},
	model.IntentProductKnowledge: {
		{model.ContractProductSpec, regexp.MustCompile(`(?i)\b(specs?|specifications?|exact|limits?|how many|price list|sla)\b`)},
		{model.ContractProductExplanation, regexp.MustCompile(`(?i)\b(how does|explain|what is|overview|works?)\b`)},
	},
	model.IntentGeneralHelp: {
		{model.ContractDraftAssist, regexp.MustCompile(`(?i)\b(draft|write|compose|email|message)\b`)},
	},
}

// validContracts is the enumerated contract list the LLM selector is
// constrained to per intent. An LLM answer outside this list falls back to
// GENERAL_RESPONSE, never to anything with authority implications.
var validContracts = map[model.Intent][]model.AnswerContract{
	model.IntentSingleMeeting: {
		model.ContractMeetingSummary, model.ContractExtractiveFact,
		model.ContractQuoteSelection, model.ContractActionItems,
		model.ContractGeneralResponse,
	},
	model.IntentMultiMeeting: {
		model.ContractPatternAnalysis, model.ContractTrendComparison,
		model.ContractGeneralResponse,
	},
	model.IntentProductKnowledge: {
		model.ContractProductExplanation, model.ContractProductSpec,
		model.ContractGeneralResponse,
	},
	model.IntentExternalResearch: {
		model.ContractProductExplanation, model.ContractGeneralResponse,
	},
	model.IntentDocumentSearch: {
		model.ContractGeneralResponse,
	},
	model.IntentGeneralHelp: {
		model.ContractDraftAssist, model.ContractGeneralResponse,
	},
}

// Selector picks answer contracts; the LLM is only consulted when no
// keyword rule fires
type Selector struct {
	llm     adapter.LLM
	prompts *prompt.Registry
	model   string
}

// NewSelector creates a Selector using the given model for fallback picks
func NewSelector(llm adapter.LLM, prompts *prompt.Registry, modelName string) *Selector {
	return &Selector{llm: llm, prompts: prompts, model: modelName}
}

// layerPermits reports whether the resolved context layers allow a
// contract's data scope. Contracts that fetch nothing are always permitted.
func layerPermits(c model.AnswerContract, layers model.ContextLayers) bool {
	switch c {
	case model.ContractMeetingSummary, model.ContractQuoteSelection, model.ContractActionItems:
		return layers.SingleMeeting
	case model.ContractExtractiveFact:
		return layers.SingleMeeting || layers.MultiMeeting
	case model.ContractPatternAnalysis, model.ContractTrendComparison:
		return layers.MultiMeeting
	case model.ContractProductExplanation, model.ContractProductSpec:
		return layers.ProductSSOT
	default:
		return true
	}
}

// SelectAnswerContract returns the contract for one classified question.
// Constraints always come from the static contract table, never computed
// per call. Contracts whose data scope the context layers deny are never
// selected, by keyword or by LLM.
func (s *Selector) SelectAnswerContract(ctx context.Context, question string, intent model.Intent, layers model.ContextLayers) (*model.ContractSelection, model.PromptUsage, error) {
	logger := logging.From(ctx)
	usage := model.PromptUsage{}

	for _, kw := range contractKeywords[intent] {
		if kw.re.MatchString(question) {
			if !layerPermits(kw.contract, layers) {
				logger.Warn("keyword contract denied by context layers",
					"intent", intent, "contract", kw.contract)
				continue
			}
			cs, err := kw.contract.Constraints()
			if err != nil {
				return nil, usage, err
			}
			logger.Info("contract selected by keyword", "intent", intent, "contract", kw.contract)
			return &model.ContractSelection{
				Contract:    kw.contract,
				Method:      model.SelectByKeyword,
				Constraints: cs,
			}, usage, nil
		}
	}

	selected, llmUsage := s.selectByLLM(ctx, question, intent, layers)
	usage.Merge(llmUsage)

	cs, err := selected.Constraints()
	if err != nil {
		return nil, usage, err
	}

	method := model.SelectByLLM
	if selected == model.ContractGeneralResponse {
		method = model.SelectByDefault
	}
	logger.Info("contract selected", "intent", intent, "contract", selected, "method", method)
	return &model.ContractSelection{
		Contract:    selected,
		Method:      method,
		Constraints: cs,
	}, usage, nil
}

// selectByLLM asks the model to pick from the enumerated valid-contract
// list, narrowed to contracts the layers permit. Anything invalid or
// unparsable defaults to GENERAL_RESPONSE.
func (s *Selector) selectByLLM(ctx context.Context, question string, intent model.Intent, layers model.ContextLayers) (model.AnswerContract, model.PromptUsage) {
	logger := logging.From(ctx)

	var valid []model.AnswerContract
	for _, c := range validContracts[intent] {
		if layerPermits(c, layers) {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return model.ContractGeneralResponse, nil
	}

	text, usage, err := s.prompts.Render(prompt.ContractSelect, map[string]any{
		"Question":  question,
		"Intent":    intent,
		"Contracts": valid,
	})
	if err != nil {
		logger.Warn("contract selector prompt failed", "error", err)
		return model.ContractGeneralResponse, nil
	}

	raw, err := s.llm.GenerateText(ctx, adapter.GenerateInput{
		Model:       s.model,
		Messages:    []adapter.Message{{Role: adapter.RoleUser, Content: text}},
		Temperature: adapter.Temp(0),
	})
	if err != nil {
		logger.Warn("contract selector call failed, defaulting", "error", err)
		return model.ContractGeneralResponse, usage
	}

	var parsed struct {
		Contract string `json:"contract"`
	}
	if err := llmjson.Unmarshal(ctx, raw, &parsed); err != nil {
		return model.ContractGeneralResponse, usage
	}

	candidate := model.AnswerContract(parsed.Contract)
	for _, v := range valid {
		if candidate == v {
			return candidate, usage
		}
	}

	logger.Warn("contract selector returned invalid contract, defaulting",
		"contract", parsed.Contract, "intent", intent)
	return model.ContractGeneralResponse, usage
}
