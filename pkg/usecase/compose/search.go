package compose

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/utils/llmjson"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// MatchTier records which rung of the search fallback ladder produced the
// result. TierProperNounOnly is a guardrail: content that merely shares a
// name with the question is refused, not presented.
type MatchTier string

const (
	TierReranked       MatchTier = "llm_reranked"
	TierNounAndKeyword MatchTier = "noun_and_keyword"
	TierKeywordOnly    MatchTier = "keyword_only"
	TierProperNounOnly MatchTier = "proper_noun_only"
	TierNone           MatchTier = "none"
)

// Minimum re-rank score a chunk needs to stay in the candidate set
const rerankScoreMin = 0.5

// SearchResult is the candidate chunk set plus how it was found
type SearchResult struct {
	Chunks []model.TranscriptChunk
	Tier   MatchTier
}

var wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z'-]*`)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"what": true, "did": true, "say": true, "about": true,
	"with": true, "from": true, "they": true, "them": true, "their": true,
	"have": true, "has": true, "was": true, "were": true, "are": true,
	"you": true, "our": true, "any": true, "all": true, "how": true,
	"who": true, "when": true, "where": true, "why": true, "does": true,
	"can": true, "will": true, "would": true, "should": true, "tell": true,
	"mention": true, "mentioned": true, "meeting": true, "meetings": true,
	"call": true, "calls": true,
}

// SearchChunks finds the chunks most likely to answer the question.
// Fallback order: LLM re-ranking over a keyword-prefiltered pool, then
// noun+keyword matches, then keyword-only, then proper-noun-only (which the
// caller must refuse to answer from).
func (e *Engine) SearchChunks(ctx context.Context, question string, chunks []model.TranscriptChunk, limit int) (*SearchResult, model.PromptUsage, error) {
	logger := logging.From(ctx)
	usage := model.PromptUsage{}
	if limit <= 0 {
		limit = 10
	}

	keywords, nouns := extractTerms(question)
	if len(keywords) == 0 && len(nouns) == 0 {
		return &SearchResult{Tier: TierNone}, usage, nil
	}

	type scored struct {
		chunk      model.TranscriptChunk
		hasKeyword bool
		hasNoun    bool
	}
	var pool []scored
	for _, chunk := range chunks {
		lower := strings.ToLower(chunk.Text)
		s := scored{chunk: chunk}
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				s.hasKeyword = true
				break
			}
		}
		for _, noun := range nouns {
			if strings.Contains(lower, strings.ToLower(noun)) {
				s.hasNoun = true
				break
			}
		}
		if s.hasKeyword || s.hasNoun {
			pool = append(pool, s)
		}
	}

	if len(pool) == 0 {
		return &SearchResult{Tier: TierNone}, usage, nil
	}

	// Semantic re-ranking over the keyword-prefiltered pool
	var keywordPool []model.TranscriptChunk
	for _, s := range pool {
		if s.hasKeyword {
			keywordPool = append(keywordPool, s.chunk)
		}
	}
	if len(keywordPool) > 0 {
		reranked, rerankUsage, err := e.rerank(ctx, question, keywordPool, limit)
		usage.Merge(rerankUsage)
		if err == nil && len(reranked) > 0 {
			return &SearchResult{Chunks: reranked, Tier: TierReranked}, usage, nil
		}
		if err != nil {
			logger.Warn("re-ranking failed, falling back to exact matching", "error", err)
		}
	}

	// Deterministic tiers
	var both, keywordOnly, nounOnly []model.TranscriptChunk
	for _, s := range pool {
		switch {
		case s.hasKeyword && s.hasNoun:
			both = append(both, s.chunk)
		case s.hasKeyword:
			keywordOnly = append(keywordOnly, s.chunk)
		default:
			nounOnly = append(nounOnly, s.chunk)
		}
	}

	switch {
	case len(both) > 0:
		return &SearchResult{Chunks: capChunks(both, limit), Tier: TierNounAndKeyword}, usage, nil
	case len(keywordOnly) > 0:
		return &SearchResult{Chunks: capChunks(keywordOnly, limit), Tier: TierKeywordOnly}, usage, nil
	default:
		logger.Warn("only proper-noun matches found, refusing to answer from them",
			"nouns", nouns, "candidates", len(nounOnly))
		return &SearchResult{Chunks: capChunks(nounOnly, limit), Tier: TierProperNounOnly}, usage, nil
	}
}

// rerank asks the LLM to score the candidate pool against the question.
// Candidates are labeled by position in the pool, not by chunk index: pools
// can span transcripts, and chunk indexes are only unique within one.
func (e *Engine) rerank(ctx context.Context, question string, pool []model.TranscriptChunk, limit int) ([]model.TranscriptChunk, model.PromptUsage, error) {
	text, usage, err := e.prompts.Render(prompt.Rerank, map[string]any{
		"Question":   question,
		"Candidates": formatCandidates(pool),
	})
	if err != nil {
		return nil, usage, err
	}

	raw, err := e.llm.GenerateText(ctx, adapter.GenerateInput{
		Model:       e.model,
		Messages:    []adapter.Message{{Role: adapter.RoleUser, Content: text}},
		Temperature: adapter.Temp(0),
	})
	if err != nil {
		return nil, usage, err
	}

	var parsed struct {
		Rankings []struct {
			Index  int     `json:"index"`
			Score  float64 `json:"score"`
			Reason string  `json:"reason"`
		} `json:"rankings"`
	}
	if err := llmjson.Unmarshal(ctx, raw, &parsed); err != nil {
		return nil, usage, err
	}

	sort.SliceStable(parsed.Rankings, func(i, j int) bool {
		return parsed.Rankings[i].Score > parsed.Rankings[j].Score
	})

	var out []model.TranscriptChunk
	seen := make(map[int]bool, len(parsed.Rankings))
	for _, r := range parsed.Rankings {
		if r.Score < rerankScoreMin {
			continue
		}
		if r.Index < 0 || r.Index >= len(pool) || seen[r.Index] {
			continue
		}
		seen[r.Index] = true
		out = append(out, pool[r.Index])
		if len(out) >= limit {
			break
		}
	}
	return out, usage, nil
}

// formatCandidates renders the re-rank candidate pool, labeled by position
func formatCandidates(pool []model.TranscriptChunk) string {
	var b strings.Builder
	for i, chunk := range pool {
		speaker := string(chunk.SpeakerRole)
		if chunk.SpeakerName != "" {
			speaker = chunk.SpeakerName + ", " + speaker
		}
		fmt.Fprintf(&b, "[%d] (%s) %s\n", i, speaker, chunk.Text)
	}
	return b.String()
}

// extractTerms splits the question into lowercase keywords and capitalized
// proper nouns. A capitalized word at the start of a sentence is treated as
// an ordinary keyword.
func extractTerms(question string) (keywords, nouns []string) {
	words := wordPattern.FindAllStringIndex(question, -1)
	seenKw := make(map[string]bool)
	seenNoun := make(map[string]bool)

	sentenceStart := true
	for _, loc := range words {
		word := question[loc[0]:loc[1]]
		lower := strings.ToLower(word)

		isCapitalized := word[0] >= 'A' && word[0] <= 'Z'
		if isCapitalized && !sentenceStart {
			if !seenNoun[word] {
				seenNoun[word] = true
				nouns = append(nouns, word)
			}
		} else if len(lower) >= 3 && !stopwords[lower] && !seenKw[lower] {
			seenKw[lower] = true
			keywords = append(keywords, lower)
		}

		// Track sentence boundaries by looking at what follows the word
		sentenceStart = false
		for i := loc[1]; i < len(question); i++ {
			c := question[i]
			if c == '.' || c == '?' || c == '!' {
				sentenceStart = true
				break
			}
			if c != ' ' && c != '\t' && c != '\n' {
				break
			}
		}
	}
	return keywords, nouns
}

func capChunks(chunks []model.TranscriptChunk, limit int) []model.TranscriptChunk {
	if len(chunks) > limit {
		return chunks[:limit]
	}
	return chunks
}
