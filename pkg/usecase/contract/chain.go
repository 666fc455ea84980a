package contract

import (
	"regexp"

	"github.com/leverege/meetingmind/pkg/model"
)

// Chain planners fire only on explicit conjunction language. A single
// keyword hit must never expand into a multi-step chain; false-positive
// multi-step execution is worse than a one-step answer.

var singleMeetingChainRules = []struct {
	re    *regexp.Regexp
	steps []model.AnswerContract
}{
	{
		re:    regexp.MustCompile(`(?i)\bsummar\w+\b.*\band\b.*\b(action items?|next steps?|follow[- ]?ups?)\b`),
		steps: []model.AnswerContract{model.ContractMeetingSummary, model.ContractActionItems},
	},
	{
		re:    regexp.MustCompile(`(?i)\bsummar\w+\b.*\band\b.*\bquotes?\b`),
		steps: []model.AnswerContract{model.ContractMeetingSummary, model.ContractQuoteSelection},
	},
}

var multiMeetingChainRules = []struct {
	re    *regexp.Regexp
	steps []model.AnswerContract
}{
	{
		re:    regexp.MustCompile(`(?i)\bquestions?\b.*\band\b.*\bpatterns?\b`),
		steps: []model.AnswerContract{model.ContractExtractiveFact, model.ContractPatternAnalysis},
	},
	{
		re:    regexp.MustCompile(`(?i)\bcompare\b.*\bover time\b`),
		steps: []model.AnswerContract{model.ContractPatternAnalysis, model.ContractTrendComparison},
	},
}

// SelectSingleMeetingChain plans the chain for a single-meeting request.
// Without explicit conjunction language it wraps the already-selected
// contract as a one-step chain.
func SelectSingleMeetingChain(question string, selected model.AnswerContract) (*model.ContractChain, error) {
	for _, rule := range singleMeetingChainRules {
		if rule.re.MatchString(question) {
			chain := &model.ContractChain{
				Primary: rule.steps[0],
				Steps:   append([]model.AnswerContract(nil), rule.steps...),
			}
			if err := chain.Validate(); err != nil {
				return nil, err
			}
			return chain, nil
		}
	}

	chain := model.SingleChain(selected)
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	return chain, nil
}

// SelectMultiMeetingChain plans the chain for a multi-meeting request.
// The default is a one-step PATTERN_ANALYSIS chain.
func SelectMultiMeetingChain(question string) (*model.ContractChain, error) {
	for _, rule := range multiMeetingChainRules {
		if rule.re.MatchString(question) {
			chain := &model.ContractChain{
				// The last step is the one whose shape the user asked for
				Primary: rule.steps[len(rule.steps)-1],
				Steps:   append([]model.AnswerContract(nil), rule.steps...),
			}
			if err := chain.Validate(); err != nil {
				return nil, err
			}
			return chain, nil
		}
	}

	chain := model.SingleChain(model.ContractPatternAnalysis)
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	return chain, nil
}
