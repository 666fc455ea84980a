package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidContract   = goerr.New("invalid answer contract")
	ErrEmptyChain        = goerr.New("contract chain must not be empty")
	ErrAuthorityEscalate = goerr.New("authority escalation in contract chain")
)

// SSOTMode is the authority level of an answer contract.
// none = extractive from meeting evidence only, descriptive = grounded but
// non-falsifiable explanation, authoritative = must be backed by product
// source-of-truth data.
type SSOTMode string

const (
	SSOTNone          SSOTMode = "none"
	SSOTDescriptive   SSOTMode = "descriptive"
	SSOTAuthoritative SSOTMode = "authoritative"
)

// Level returns the numeric authority ordering used for escalation checks
func (m SSOTMode) Level() int {
	switch m {
	case SSOTDescriptive:
		return 1
	case SSOTAuthoritative:
		return 2
	default:
		return 0
	}
}

// AnswerContract is the fixed response shape selected after intent and
// context layers. Contracts are task-shaped (extraction, comparison, trend,
// drafting), never topic-shaped.
type AnswerContract string

const (
	ContractMeetingSummary     AnswerContract = "MEETING_SUMMARY"
	ContractExtractiveFact     AnswerContract = "EXTRACTIVE_FACT"
	ContractQuoteSelection     AnswerContract = "QUOTE_SELECTION"
	ContractActionItems        AnswerContract = "ACTION_ITEMS"
	ContractPatternAnalysis    AnswerContract = "PATTERN_ANALYSIS"
	ContractTrendComparison    AnswerContract = "TREND_COMPARISON"
	ContractProductExplanation AnswerContract = "PRODUCT_EXPLANATION"
	ContractProductSpec        AnswerContract = "PRODUCT_SPEC"
	ContractDraftAssist        AnswerContract = "DRAFT_ASSIST"
	ContractGeneralResponse    AnswerContract = "GENERAL_RESPONSE"
)

// ResponseFormat is the output shape a contract commits to
type ResponseFormat string

const (
	FormatText       ResponseFormat = "text"
	FormatList       ResponseFormat = "list"
	FormatStructured ResponseFormat = "structured"
)

// Constraints are the fixed execution rules attached to a contract. They are
// looked up from the static table below, never computed ad hoc.
type Constraints struct {
	Mode             SSOTMode
	RequiresEvidence bool
	RequiresCitation bool
	AllowsSummary    bool
	Format           ResponseFormat
}

var contractConstraints = map[AnswerContract]Constraints{
	ContractMeetingSummary:     {Mode: SSOTNone, RequiresEvidence: true, RequiresCitation: false, AllowsSummary: true, Format: FormatStructured},
	ContractExtractiveFact:     {Mode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, AllowsSummary: false, Format: FormatText},
	ContractQuoteSelection:     {Mode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, AllowsSummary: false, Format: FormatList},
	ContractActionItems:        {Mode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, AllowsSummary: false, Format: FormatStructured},
	ContractPatternAnalysis:    {Mode: SSOTNone, RequiresEvidence: true, RequiresCitation: false, AllowsSummary: true, Format: FormatStructured},
	ContractTrendComparison:    {Mode: SSOTNone, RequiresEvidence: true, RequiresCitation: false, AllowsSummary: true, Format: FormatStructured},
	ContractProductExplanation: {Mode: SSOTDescriptive, RequiresEvidence: false, RequiresCitation: false, AllowsSummary: true, Format: FormatText},
	ContractProductSpec:        {Mode: SSOTAuthoritative, RequiresEvidence: true, RequiresCitation: true, AllowsSummary: false, Format: FormatText},
	ContractDraftAssist:        {Mode: SSOTDescriptive, RequiresEvidence: false, RequiresCitation: false, AllowsSummary: true, Format: FormatText},
	ContractGeneralResponse:    {Mode: SSOTNone, RequiresEvidence: false, RequiresCitation: false, AllowsSummary: true, Format: FormatText},
}

// Constraints returns the fixed constraint set for the contract
func (c AnswerContract) Constraints() (Constraints, error) {
	cs, ok := contractConstraints[c]
	if !ok {
		return Constraints{}, goerr.Wrap(ErrInvalidContract, "no constraints registered", goerr.V("contract", c))
	}
	return cs, nil
}

// Validate checks if the contract is a known member of the closed enum
func (c AnswerContract) Validate() error {
	if _, ok := contractConstraints[c]; !ok {
		return goerr.Wrap(ErrInvalidContract, "unknown contract", goerr.V("contract", c))
	}
	return nil
}

// Mode returns the SSOT mode of the contract, SSOTNone if unknown
func (c AnswerContract) Mode() SSOTMode {
	if cs, ok := contractConstraints[c]; ok {
		return cs.Mode
	}
	return SSOTNone
}

// SelectMethod records how a contract was chosen
type SelectMethod string

const (
	SelectByKeyword SelectMethod = "keyword"
	SelectByChain   SelectMethod = "chain"
	SelectByLLM     SelectMethod = "llm"
	SelectByDefault SelectMethod = "default"
)

// ContractSelection is the outcome of the answer contract selector
type ContractSelection struct {
	Contract    AnswerContract
	Method      SelectMethod
	Constraints Constraints
}

// ContractChain is an ordered, non-empty sequence of contracts executed for
// one compound request within a single intent/scope. Primary is the contract
// recorded in logs and the audit trail.
type ContractChain struct {
	Primary AnswerContract
	Steps   []AnswerContract
}

// allowedEscalations lists the only authority increases a chain may contain.
// Anything else is a chain-construction error, not a runtime judgment call.
var allowedEscalations = map[SSOTMode]map[SSOTMode]bool{
	SSOTNone: {SSOTDescriptive: true},
}

// Validate enforces the no-silent-authority-escalation invariant: each
// successive step's SSOT mode must be the same, lower, or on the explicit
// allow-list relative to the previous step.
func (ch *ContractChain) Validate() error {
	if len(ch.Steps) == 0 {
		return ErrEmptyChain
	}
	for _, step := range ch.Steps {
		if err := step.Validate(); err != nil {
			return err
		}
	}
	if err := ch.Primary.Validate(); err != nil {
		return err
	}

	for i := 1; i < len(ch.Steps); i++ {
		prev := ch.Steps[i-1].Mode()
		next := ch.Steps[i].Mode()
		if next.Level() <= prev.Level() {
			continue
		}
		if allowedEscalations[prev][next] {
			continue
		}
		return goerr.Wrap(ErrAuthorityEscalate, "chain step raises authority",
			goerr.V("from", ch.Steps[i-1]), goerr.V("to", ch.Steps[i]),
			goerr.V("fromMode", prev), goerr.V("toMode", next))
	}
	return nil
}

// SingleChain wraps one contract as a one-step chain
func SingleChain(c AnswerContract) *ContractChain {
	return &ContractChain{Primary: c, Steps: []AnswerContract{c}}
}
