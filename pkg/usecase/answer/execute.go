package answer

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/usecase/compose"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// stepResult is the output of one contract execution within a chain
type stepResult struct {
	text     string
	evidence []model.Evidence
}

func (p *Pipeline) executeStep(ctx context.Context, step model.AnswerContract, req *model.Request, clf *model.Classification, layers model.ContextLayers) (*stepResult, model.PromptUsage, error) {
	switch step {
	case model.ContractExtractiveFact:
		// Inside a multi-meeting chain, extraction runs across the company's
		// meetings instead of one pinned transcript
		if clf.Intent == model.IntentMultiMeeting {
			return p.executeMultiMeetingStep(ctx, step, req, clf, layers)
		}
		return p.executeMeetingStep(ctx, step, req, layers)

	case model.ContractMeetingSummary, model.ContractQuoteSelection, model.ContractActionItems:
		return p.executeMeetingStep(ctx, step, req, layers)

	case model.ContractPatternAnalysis, model.ContractTrendComparison:
		return p.executeMultiMeetingStep(ctx, step, req, clf, layers)

	case model.ContractProductExplanation:
		return p.generateDirect(ctx, prompt.ProductExplain, req)
	case model.ContractDraftAssist:
		return p.generateDirect(ctx, prompt.DraftAssist, req)
	case model.ContractGeneralResponse:
		return p.generateDirect(ctx, prompt.GeneralResponse, req)

	case model.ContractProductSpec:
		// Spec-grade answers need the authoritative product source, which
		// is not connected in this deployment
		return &stepResult{text: "No authoritative product source is connected, so I can't " +
			"give a specification-grade answer. I can describe how the platform " +
			"generally works if that helps."}, model.PromptUsage{}, nil

	default:
		return nil, model.PromptUsage{}, goerr.Wrap(errUnknownContract, "no executor registered",
			goerr.V("contract", step))
	}
}

// meetingBundle is the evidence loaded for one transcript. The four reads
// are independent and issued concurrently.
type meetingBundle struct {
	transcript    *model.Transcript
	chunks        []model.TranscriptChunk
	qaPairs       []model.QAPair
	storedActions []model.MeetingActionItem
}

func (p *Pipeline) fetchMeeting(ctx context.Context, id model.TranscriptID) (*meetingBundle, error) {
	bundle := &meetingBundle{}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		t, err := p.repo.GetTranscriptByID(ctx, id)
		bundle.transcript = t
		return err
	})
	eg.Go(func() error {
		chunks, err := p.repo.GetChunksForTranscript(ctx, id, 0)
		bundle.chunks = chunks
		return err
	})
	eg.Go(func() error {
		pairs, err := p.repo.GetQAPairsByTranscriptID(ctx, id)
		bundle.qaPairs = pairs
		return err
	})
	eg.Go(func() error {
		items, err := p.repo.GetMeetingActionItemsByTranscript(ctx, id)
		bundle.storedActions = items
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to load meeting evidence", goerr.V("transcript", id))
	}
	return bundle, nil
}

func (p *Pipeline) executeMeetingStep(ctx context.Context, step model.AnswerContract, req *model.Request, layers model.ContextLayers) (*stepResult, model.PromptUsage, error) {
	usage := model.PromptUsage{}
	if !layers.SingleMeeting {
		return nil, usage, goerr.Wrap(errLayerDenied, "single-meeting scope is off for this intent",
			goerr.V("contract", step))
	}
	if req.TranscriptID == "" {
		return &stepResult{text: "Which meeting should I look at? Please include the meeting's transcript ID."}, usage, nil
	}

	bundle, err := p.fetchMeeting(ctx, req.TranscriptID)
	if err != nil {
		return nil, usage, err
	}

	switch step {
	case model.ContractMeetingSummary:
		summary, u, err := p.engine.SummarizeMeeting(ctx, bundle.transcript, bundle.chunks)
		usage.Merge(u)
		if err != nil {
			return nil, usage, err
		}
		return &stepResult{text: formatSummary(bundle.transcript, summary)}, usage, nil

	case model.ContractActionItems:
		// Stored items from ingestion win over a fresh extraction
		if len(bundle.storedActions) > 0 {
			return &stepResult{text: formatStoredActions(bundle.storedActions)}, usage, nil
		}
		buckets, u, err := p.engine.ExtractActionItems(ctx, bundle.transcript, bundle.chunks)
		usage.Merge(u)
		if err != nil {
			return nil, usage, err
		}
		return &stepResult{text: formatActionBuckets(buckets)}, usage, nil

	case model.ContractQuoteSelection:
		result, u, err := p.engine.SelectRepresentativeQuotes(ctx, bundle.transcript, bundle.chunks, compose.DefaultMaxQuotes)
		usage.Merge(u)
		if err != nil {
			return nil, usage, err
		}
		res := &stepResult{text: formatQuotes(result)}
		for _, q := range result.Quotes {
			res.evidence = append(res.evidence, model.Evidence{ChunkIndex: q.ChunkIndex, Text: q.Quote})
		}
		return res, usage, nil

	case model.ContractExtractiveFact:
		// A stored Q&A pair that already answers this question skips the LLM
		if qa := matchStoredQA(req.Question, bundle.qaPairs); qa != nil {
			logging.From(ctx).Info("extractive answer served from stored Q&A pair", "transcript", qa.TranscriptID)
			return &stepResult{
				text:     qa.Answer,
				evidence: []model.Evidence{{ChunkIndex: qa.ChunkIndex, Text: qa.Answer}},
			}, usage, nil
		}

		extracted, u, err := p.engine.ExtractAnswer(ctx, req.Question, bundle.chunks)
		usage.Merge(u)
		if err != nil {
			return nil, usage, err
		}
		if !extracted.WasFound {
			return &stepResult{text: "I couldn't find that in this meeting's transcript."}, usage, nil
		}
		return &stepResult{
			text:     extracted.Answer,
			evidence: []model.Evidence{{ChunkIndex: evidenceChunkIndex(extracted.Evidence, bundle.chunks), Text: extracted.Evidence}},
		}, usage, nil
	}

	return nil, usage, goerr.Wrap(errUnknownContract, "not a meeting contract", goerr.V("contract", step))
}

func (p *Pipeline) executeMultiMeetingStep(ctx context.Context, step model.AnswerContract, req *model.Request, clf *model.Classification, layers model.ContextLayers) (*stepResult, model.PromptUsage, error) {
	usage := model.PromptUsage{}
	if !layers.MultiMeeting {
		return nil, usage, goerr.Wrap(errLayerDenied, "multi-meeting scope is off for this intent",
			goerr.V("contract", step))
	}

	company, err := p.resolveCompany(ctx, req, clf)
	if err != nil {
		return nil, usage, err
	}
	if company == "" {
		return &stepResult{text: "Which customer should I look across meetings for?"}, usage, nil
	}

	transcripts, err := p.repo.ListTranscriptsByCompany(ctx, company)
	if err != nil {
		return nil, usage, goerr.Wrap(err, "failed to list company meetings", goerr.V("company", company))
	}
	if len(transcripts) == 0 {
		return &stepResult{text: "I don't have any meetings on record for " + company + "."}, usage, nil
	}
	sort.Slice(transcripts, func(i, j int) bool {
		return transcripts[i].MeetingDate.Before(transcripts[j].MeetingDate)
	})

	// Chunk retrieval per meeting is independent; fetch concurrently
	chunksByMeeting := make([][]model.TranscriptChunk, len(transcripts))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, tr := range transcripts {
		eg.Go(func() error {
			chunks, err := p.repo.GetChunksForTranscript(egCtx, tr.ID, 0)
			chunksByMeeting[i] = chunks
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, usage, goerr.Wrap(err, "failed to load company meeting chunks", goerr.V("company", company))
	}

	switch step {
	case model.ContractPatternAnalysis, model.ContractExtractiveFact:
		var all []model.TranscriptChunk
		for _, chunks := range chunksByMeeting {
			all = append(all, chunks...)
		}
		extracted, u, err := p.engine.ExtractAnswer(ctx, req.Question, all)
		usage.Merge(u)
		if err != nil {
			return nil, usage, err
		}
		if !extracted.WasFound {
			return &stepResult{text: "I looked across " + countMeetings(len(transcripts)) + " with " +
				company + " and couldn't find that."}, usage, nil
		}
		text := extracted.Answer
		if step == model.ContractPatternAnalysis {
			text = "Across " + countMeetings(len(transcripts)) + " with " + company + ": " + extracted.Answer
		}
		return &stepResult{
			text:     text,
			evidence: []model.Evidence{{ChunkIndex: evidenceChunkIndex(extracted.Evidence, all), Text: extracted.Evidence}},
		}, usage, nil

	case model.ContractTrendComparison:
		// Per-meeting insights, presented in meeting order. LLM calls within
		// one contract execution run sequentially.
		var lines []string
		for i, tr := range transcripts {
			insights, u, err := p.engine.ExtractInsights(ctx, tr, chunksByMeeting[i])
			usage.Merge(u)
			if err != nil {
				return nil, usage, err
			}
			line := tr.MeetingDate.Format("2006-01-02") + ": "
			if len(insights.Insights) == 0 {
				line += "no notable insights"
			} else {
				line += strings.Join(insights.Insights, "; ")
			}
			lines = append(lines, "- "+line)
		}
		return &stepResult{text: "How things moved across " + countMeetings(len(transcripts)) +
			" with " + company + ":\n" + strings.Join(lines, "\n")}, usage, nil
	}

	return nil, usage, goerr.Wrap(errUnknownContract, "not a multi-meeting contract", goerr.V("contract", step))
}

// resolveCompany finds the company scope for a multi-meeting request: the
// entity the classifier matched, else a known company named in the question,
// else the company of the pinned transcript
func (p *Pipeline) resolveCompany(ctx context.Context, req *model.Request, clf *model.Classification) (string, error) {
	for _, signal := range clf.Decision.MatchedSignals {
		if name, ok := strings.CutPrefix(signal, "company:"); ok {
			return name, nil
		}
	}

	// Keyword-classified questions carry no entity signal; scan the known
	// company list against the question text
	companies, err := p.repo.ListCompanyNames(ctx)
	if err == nil {
		lower := strings.ToLower(req.Question)
		for _, name := range companies {
			if name != "" && strings.Contains(lower, strings.ToLower(name)) {
				return name, nil
			}
		}
	}

	if req.TranscriptID != "" {
		tr, err := p.repo.GetTranscriptByID(ctx, req.TranscriptID)
		if err != nil {
			return "", goerr.Wrap(err, "failed to resolve company from transcript", goerr.V("transcript", req.TranscriptID))
		}
		return tr.CompanyName, nil
	}
	return "", nil
}

// generateDirect answers contracts that need no meeting evidence via a
// single rendered prompt
func (p *Pipeline) generateDirect(ctx context.Context, id prompt.ID, req *model.Request) (*stepResult, model.PromptUsage, error) {
	usage := model.PromptUsage{}

	text, renderUsage, err := p.prompts.Render(id, map[string]any{
		"Question":      req.Question,
		"ThreadContext": req.ThreadContext,
	})
	if err != nil {
		return nil, usage, err
	}
	usage.Merge(renderUsage)

	raw, err := p.llm.GenerateText(ctx, adapter.GenerateInput{
		Model:       p.model,
		Messages:    []adapter.Message{{Role: adapter.RoleUser, Content: text}},
		Temperature: adapter.Temp(0.4),
	})
	if err != nil {
		return nil, usage, err
	}
	return &stepResult{text: strings.TrimSpace(raw)}, usage, nil
}

// matchStoredQA returns a stored pair whose question matches the incoming
// one after normalization
func matchStoredQA(question string, pairs []model.QAPair) *model.QAPair {
	normalized := normalizeQuestion(question)
	for i, qa := range pairs {
		if normalizeQuestion(qa.Question) == normalized {
			return &pairs[i]
		}
	}
	return nil
}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(q), "?!. "))
}

// evidenceChunkIndex recovers the chunk a verbatim evidence string came
// from, -1 when no chunk contains it
func evidenceChunkIndex(evidence string, chunks []model.TranscriptChunk) int {
	if evidence == "" {
		return -1
	}
	for _, chunk := range chunks {
		if strings.Contains(chunk.Text, evidence) {
			return chunk.ChunkIndex
		}
	}
	return -1
}

func countMeetings(n int) string {
	if n == 1 {
		return "1 meeting"
	}
	return strconv.Itoa(n) + " meetings"
}
