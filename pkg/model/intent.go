package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidIntent = goerr.New("invalid intent")
)

// Intent is the single coarse-grained purpose assigned to a user question.
// It is fixed for the lifetime of one request and never reassigned downstream.
type Intent string

const (
	IntentSingleMeeting    Intent = "single_meeting"
	IntentMultiMeeting     Intent = "multi_meeting"
	IntentProductKnowledge Intent = "product_knowledge"
	IntentExternalResearch Intent = "external_research"
	IntentDocumentSearch   Intent = "document_search"
	IntentGeneralHelp      Intent = "general_help"
	IntentRefuse           Intent = "refuse"
	IntentClarify          Intent = "clarify"
)

// Validate checks if the intent is a known member of the closed enum
func (i Intent) Validate() error {
	switch i {
	case IntentSingleMeeting, IntentMultiMeeting, IntentProductKnowledge,
		IntentExternalResearch, IntentDocumentSearch, IntentGeneralHelp,
		IntentRefuse, IntentClarify:
		return nil
	default:
		return goerr.Wrap(ErrInvalidIntent, "unknown intent", goerr.V("intent", i))
	}
}

func (i Intent) String() string {
	return string(i)
}

// ClassifyMethod records which stage of the classifier produced the result
type ClassifyMethod string

const (
	MethodRefusePattern      ClassifyMethod = "refuse_pattern"
	MethodMultiIntentPattern ClassifyMethod = "multi_intent_pattern"
	MethodKeyword            ClassifyMethod = "keyword"
	MethodEntity             ClassifyMethod = "entity"
	MethodLLMInterpretation  ClassifyMethod = "llm_interpretation"
)

// DecisionMetadata carries the structured trace of a classification decision.
// MatchedSignals and RejectedSignals allow after-the-fact review of why a
// question was routed the way it was.
type DecisionMetadata struct {
	NeedsSplit            bool     `json:"needsSplit,omitempty"`
	SplitOptions          []string `json:"splitOptions,omitempty"`
	SingleIntentViolation bool     `json:"singleIntentViolation,omitempty"`
	MatchedSignals        []string `json:"matchedSignals,omitempty"`
	RejectedSignals       []string `json:"rejectedSignals,omitempty"`
}

// Classification is the outcome of the intent classifier for one question
type Classification struct {
	Intent         Intent           `json:"intent"`
	Method         ClassifyMethod   `json:"method"`
	Confidence     float64          `json:"confidence"`
	Reason         string           `json:"reason"`
	Decision       DecisionMetadata `json:"decisionMetadata"`
	Interpretation *Interpretation  `json:"interpretation,omitempty"`
}

// ContextLayers is the set of data-scope permissions derived from an Intent.
// Downstream components consult it to decide what they may fetch; it never
// changes the intent or the contract.
type ContextLayers struct {
	ProductSSOT   bool
	SingleMeeting bool
	MultiMeeting  bool
	Documents     bool
}

// Interpretation is the non-executing proposal generated for ambiguous
// questions. It is advisory only: the carrying Classification is always
// CLARIFY regardless of Confidence.
type Interpretation struct {
	ProposedIntent   Intent         `json:"proposedIntent"`
	ProposedContract AnswerContract `json:"proposedContract"`
	Confidence       float64        `json:"confidence"`
	PartialAnswer    string         `json:"partialAnswer,omitempty"`
	Alternatives     []string       `json:"alternatives,omitempty"`
	Message          string         `json:"message"`
}
