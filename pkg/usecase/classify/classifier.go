// Package classify assigns exactly one intent to each incoming question.
// Deterministic signals decide; the LLM is consulted only to validate a weak
// match or to propose a clarification, never to pick an executable intent.
package classify

import (
	"context"
	"strings"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/repository"
	"github.com/leverege/meetingmind/pkg/utils/cache"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// AmbiguityInterpreter produces clarification proposals for questions that
// defeat deterministic classification
type AmbiguityInterpreter interface {
	Interpret(ctx context.Context, question, failureReason, threadContext string) (*model.Classification, model.PromptUsage, error)
}

// Classifier maps raw question text to an Intent
type Classifier struct {
	llm         adapter.LLM
	prompts     *prompt.Registry
	interpreter AmbiguityInterpreter
	model       string

	contacts  []string
	companies *cache.TTL[[]string]
	clock     cache.Clock
}

type Option func(*Classifier)

// WithContacts sets the static internal contact list used by entity detection
func WithContacts(contacts []string) Option {
	return func(c *Classifier) {
		c.contacts = contacts
	}
}

// WithClock replaces the company-cache clock, used by tests
func WithClock(clock cache.Clock) Option {
	return func(c *Classifier) {
		c.clock = clock
	}
}

// New creates a Classifier. The company-name list is cached with a TTL so
// entity detection does not hit storage on every question.
func New(repo repository.Repository, llm adapter.LLM, prompts *prompt.Registry, interpreter AmbiguityInterpreter, modelName string, opts ...Option) *Classifier {
	c := &Classifier{
		llm:         llm,
		prompts:     prompts,
		interpreter: interpreter,
		model:       modelName,
	}
	for _, opt := range opts {
		opt(c)
	}

	cacheOpts := []cache.Option[[]string]{}
	if c.clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock[[]string](c.clock))
	}
	c.companies = cache.New(model.CompanyCacheTTL, func(ctx context.Context) ([]string, error) {
		return repo.ListCompanyNames(ctx)
	}, cacheOpts...)

	return c
}

// Classify assigns the intent for one question. The returned intent is
// immutable for the request: downstream components gate on it but never
// change it.
func (c *Classifier) Classify(ctx context.Context, question, threadContext string) (*model.Classification, model.PromptUsage, error) {
	logger := logging.From(ctx)
	usage := model.PromptUsage{}

	// 1. Refused topics short-circuit everything else
	for _, s := range refuseSignals {
		if s.matches(question) {
			logger.Info("question refused", "signal", s.name)
			return &model.Classification{
				Intent:     model.IntentRefuse,
				Method:     model.MethodRefusePattern,
				Confidence: 0.95,
				Reason:     "question touches a refused topic",
				Decision:   model.DecisionMetadata{MatchedSignals: []string{s.name}},
			}, usage, nil
		}
	}

	// 2. Explicit compound requests need a split before anything executes
	for _, s := range splitSignals {
		if s.matches(question) {
			logger.Info("compound request detected", "signal", s.name)
			return &model.Classification{
				Intent:     model.IntentClarify,
				Method:     model.MethodMultiIntentPattern,
				Confidence: 0.9,
				Reason:     "question combines meeting content with another request",
				Decision: model.DecisionMetadata{
					NeedsSplit:     true,
					SplitOptions:   append([]string(nil), splitOptions...),
					MatchedSignals: []string{s.name},
				},
			}, usage, nil
		}
	}

	// 3. Category matching. Each set is tested independently; matching more
	// than one is ambiguity, never resolved by priority order.
	type categoryMatch struct {
		intent   model.Intent
		matched  []string
		rejected []string
		weakOnly bool
	}
	categories := []struct {
		intent  model.Intent
		signals []signal
	}{
		{model.IntentMultiMeeting, multiMeetingSignals},
		{model.IntentSingleMeeting, singleMeetingSignals},
		{model.IntentProductKnowledge, productKnowledgeSignals},
	}

	var hits []categoryMatch
	var allRejected []string
	for _, cat := range categories {
		matched, rejected, weakOnly := matchSignals(question, cat.signals)
		if len(matched) > 0 {
			hits = append(hits, categoryMatch{intent: cat.intent, matched: matched, rejected: rejected, weakOnly: weakOnly})
		} else {
			allRejected = append(allRejected, rejected...)
		}
	}

	if len(hits) > 1 {
		var matched []string
		for _, h := range hits {
			for _, name := range h.matched {
				matched = append(matched, string(h.intent)+":"+name)
			}
		}
		logger.Info("single-intent violation", "matched", matched)

		clf, interpUsage, err := c.interpreter.Interpret(ctx, question, "question matched multiple intent categories", threadContext)
		if err != nil {
			return nil, usage, err
		}
		usage.Merge(interpUsage)
		clf.Decision.SingleIntentViolation = true
		clf.Decision.MatchedSignals = matched
		return clf, usage, nil
	}

	if len(hits) == 1 {
		hit := hits[0]
		confidence := 0.9

		// A lone weak signal gets a semantic second opinion. Validator
		// trouble fails open: a transient LLM issue must not block an
		// otherwise-confident request.
		if hit.weakOnly {
			ok, validateUsage := c.validateWeakMatch(ctx, question, hit.intent, hit.matched[0])
			usage.Merge(validateUsage)
			if !ok {
				clf, interpUsage, err := c.interpreter.Interpret(ctx, question, "weak deterministic match rejected on semantic check", threadContext)
				if err != nil {
					return nil, usage, err
				}
				usage.Merge(interpUsage)
				clf.Decision.MatchedSignals = hit.matched
				return clf, usage, nil
			}
			confidence = model.WeakMatchConfidence
		}

		logger.Info("intent classified by keyword",
			"intent", hit.intent, "matched", hit.matched, "rejected", hit.rejected)
		return &model.Classification{
			Intent:     hit.intent,
			Method:     model.MethodKeyword,
			Confidence: confidence,
			Reason:     "matched " + strings.Join(hit.matched, ", "),
			Decision: model.DecisionMetadata{
				MatchedSignals:  hit.matched,
				RejectedSignals: hit.rejected,
			},
		}, usage, nil
	}

	// 4. Action-priority fallbacks: drafting and greetings first, then
	// document lookup, then external research
	for _, fallback := range []struct {
		intent  model.Intent
		signals []signal
	}{
		{model.IntentGeneralHelp, generalHelpSignals},
		{model.IntentDocumentSearch, documentSearchSignals},
		{model.IntentExternalResearch, externalResearchSignals},
	} {
		matched, rejected, _ := matchSignals(question, fallback.signals)
		if len(matched) > 0 {
			logger.Info("intent classified by fallback keyword", "intent", fallback.intent, "matched", matched)
			return &model.Classification{
				Intent:     fallback.intent,
				Method:     model.MethodKeyword,
				Confidence: 0.8,
				Reason:     "matched " + strings.Join(matched, ", "),
				Decision:   model.DecisionMetadata{MatchedSignals: matched, RejectedSignals: rejected},
			}, usage, nil
		}
	}

	// 5. Entity detection against known companies and contacts
	if clf := c.detectEntity(ctx, question); clf != nil {
		return clf, usage, nil
	}

	// 6. Nothing deterministic fired. The LLM interprets; it does not decide.
	clf, interpUsage, err := c.interpreter.Interpret(ctx, question, "no deterministic signal matched", threadContext)
	if err != nil {
		return nil, usage, err
	}
	usage.Merge(interpUsage)
	clf.Decision.RejectedSignals = allRejected
	return clf, usage, nil
}

// detectEntity routes questions that name a known company or contact. An
// aggregate quantifier alongside the entity widens the scope to all meetings.
func (c *Classifier) detectEntity(ctx context.Context, question string) *model.Classification {
	logger := logging.From(ctx)
	lower := strings.ToLower(question)

	companies, err := c.companies.Get(ctx)
	if err != nil {
		// Entity detection is best-effort; the interpretation fallback
		// still runs if the list is unavailable
		logger.Warn("company list unavailable for entity detection", "error", err)
		companies = nil
	}

	var entity string
	for _, name := range companies {
		if name != "" && strings.Contains(lower, strings.ToLower(name)) {
			entity = "company:" + name
			break
		}
	}
	if entity == "" {
		for _, name := range c.contacts {
			if name != "" && strings.Contains(lower, strings.ToLower(name)) {
				entity = "contact:" + name
				break
			}
		}
	}
	if entity == "" {
		return nil
	}

	intent := model.IntentSingleMeeting
	if aggregateQuantifier.MatchString(question) {
		intent = model.IntentMultiMeeting
	}

	logger.Info("intent classified by entity", "intent", intent, "entity", entity)
	return &model.Classification{
		Intent:     intent,
		Method:     model.MethodEntity,
		Confidence: 0.85,
		Reason:     "question names " + entity,
		Decision:   model.DecisionMetadata{MatchedSignals: []string{entity}},
	}
}
