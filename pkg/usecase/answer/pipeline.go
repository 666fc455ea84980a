// Package answer runs the request pipeline: intent classification, context
// layer resolution, contract selection and chain planning, then contract
// execution against the repository and the composition engine. One Pipeline
// serves concurrent requests; the only shared mutable state is the
// classifier's company-name cache.
package answer

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/repository"
	"github.com/leverege/meetingmind/pkg/usecase/classify"
	"github.com/leverege/meetingmind/pkg/usecase/compose"
	"github.com/leverege/meetingmind/pkg/usecase/contract"
	"github.com/leverege/meetingmind/pkg/usecase/interpret"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

var (
	errUnknownContract = goerr.New("unknown contract at execution")
	errLayerDenied     = goerr.New("context layers deny retrieval for contract")
)

// Pipeline answers one question end to end
type Pipeline struct {
	repo       repository.Repository
	llm        adapter.LLM
	prompts    *prompt.Registry
	classifier *classify.Classifier
	selector   *contract.Selector
	engine     *compose.Engine
	model      string
}

type config struct {
	classifyOpts []classify.Option
}

type Option func(*config)

// WithContacts sets the static internal contact list used by the
// classifier's entity detection
func WithContacts(contacts []string) Option {
	return func(c *config) {
		c.classifyOpts = append(c.classifyOpts, classify.WithContacts(contacts))
	}
}

// New wires the pipeline components around one repository and one LLM
func New(repo repository.Repository, llm adapter.LLM, prompts *prompt.Registry, modelName string, opts ...Option) *Pipeline {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	interpreter := interpret.New(llm, prompts, modelName)
	return &Pipeline{
		repo:       repo,
		llm:        llm,
		prompts:    prompts,
		classifier: classify.New(repo, llm, prompts, interpreter, modelName, cfg.classifyOpts...),
		selector:   contract.NewSelector(llm, prompts, modelName),
		engine:     compose.New(llm, prompts, modelName),
		model:      modelName,
	}
}

// Answer runs the full pipeline for one request. The intent assigned by the
// classifier is final; everything downstream gates on it but never
// reassigns it.
func (p *Pipeline) Answer(ctx context.Context, req *model.Request) (*model.Answer, error) {
	ctx, logger := logging.ForRequest(ctx, string(req.ID))
	usage := model.PromptUsage{}

	clf, classifyUsage, err := p.classifier.Classify(ctx, req.Question, req.ThreadContext)
	if err != nil {
		return nil, goerr.Wrap(err, "classification failed", goerr.V("request", req.ID))
	}
	usage.Merge(classifyUsage)

	switch clf.Intent {
	case model.IntentRefuse:
		return refusalAnswer(clf, usage), nil
	case model.IntentClarify:
		return clarifyAnswer(clf, usage), nil
	}

	layers := contract.ComputeContextLayers(clf.Intent)
	selection, selectUsage, err := p.selector.SelectAnswerContract(ctx, req.Question, clf.Intent, layers)
	if err != nil {
		return nil, goerr.Wrap(err, "contract selection failed", goerr.V("request", req.ID))
	}
	usage.Merge(selectUsage)

	chain, err := planChain(req.Question, clf.Intent, selection.Contract)
	if err != nil {
		return nil, goerr.Wrap(err, "chain planning failed", goerr.V("request", req.ID))
	}
	logger.Info("contract chain planned",
		"intent", clf.Intent, "primary", chain.Primary, "steps", len(chain.Steps), "method", selection.Method)

	answer := &model.Answer{
		Intent:     clf.Intent,
		Contract:   chain.Primary,
		DataSource: dataSourceFor(clf.Intent),
		Confidence: clf.Confidence,
	}

	var sections []string
	for _, step := range chain.Steps {
		result, stepUsage, err := p.executeStep(ctx, step, req, clf, layers)
		usage.Merge(stepUsage)
		if errors.Is(err, errUnknownContract) || errors.Is(err, errLayerDenied) {
			logger.Warn("contract not executable, returning uncertainty response", "contract", step, "error", err)
			return uncertaintyAnswer(clf, usage), nil
		}
		if err != nil {
			return nil, goerr.Wrap(err, "contract execution failed",
				goerr.V("request", req.ID), goerr.V("contract", step))
		}
		if result.text != "" {
			sections = append(sections, result.text)
		}
		answer.Evidence = append(answer.Evidence, result.evidence...)
	}

	answer.Text = strings.Join(sections, "\n\n")
	answer.PromptVersions = usage
	return answer, nil
}

// planChain turns one selected contract into the execution chain. Chains
// only widen for explicit conjunction language; the default is the selected
// contract alone.
func planChain(question string, intent model.Intent, selected model.AnswerContract) (*model.ContractChain, error) {
	switch intent {
	case model.IntentSingleMeeting:
		return contract.SelectSingleMeetingChain(question, selected)
	case model.IntentMultiMeeting:
		return contract.SelectMultiMeetingChain(question)
	default:
		ch := model.SingleChain(selected)
		if err := ch.Validate(); err != nil {
			return nil, err
		}
		return ch, nil
	}
}

func dataSourceFor(intent model.Intent) model.DataSource {
	switch intent {
	case model.IntentSingleMeeting:
		return model.DataSourceMeeting
	case model.IntentMultiMeeting:
		return model.DataSourceMeetings
	case model.IntentProductKnowledge:
		return model.DataSourceProduct
	default:
		return model.DataSourceNone
	}
}

func refusalAnswer(clf *model.Classification, usage model.PromptUsage) *model.Answer {
	return &model.Answer{
		Text: "I can't help with that. Compensation, legal advice, and personal " +
			"data questions are outside what this assistant answers.",
		Intent:         model.IntentRefuse,
		Contract:       model.ContractGeneralResponse,
		DataSource:     model.DataSourceNone,
		Confidence:     clf.Confidence,
		PromptVersions: usage,
	}
}

func clarifyAnswer(clf *model.Classification, usage model.PromptUsage) *model.Answer {
	var text string
	switch {
	case clf.Decision.NeedsSplit:
		text = "That looks like two requests in one. Which should I start with: " +
			strings.Join(clf.Decision.SplitOptions, ", or ") + "?"
	case clf.Interpretation != nil && clf.Interpretation.Message != "":
		text = clf.Interpretation.Message
	case clf.Reason != "":
		text = clf.Reason
	default:
		text = "Could you clarify what you're looking for?"
	}

	return &model.Answer{
		Text:           text,
		Intent:         model.IntentClarify,
		Contract:       model.ContractGeneralResponse,
		DataSource:     model.DataSourceNone,
		Confidence:     clf.Confidence,
		PromptVersions: usage,
	}
}

func uncertaintyAnswer(clf *model.Classification, usage model.PromptUsage) *model.Answer {
	return &model.Answer{
		Text: "I'm not able to answer that confidently with the data I have, " +
			"and I'd rather say so than guess.",
		Intent:         clf.Intent,
		Contract:       model.ContractGeneralResponse,
		DataSource:     model.DataSourceNone,
		Confidence:     clf.Confidence,
		PromptVersions: usage,
	}
}
