// Package compose is the evidence composition engine: meeting summaries,
// quote selection, extractive answers, and action-item extraction over
// transcript chunks. It never performs retrieval; callers hand it chunks and
// it produces typed artifacts with deterministic post-processing applied to
// everything the LLM proposes.
package compose

import (
	"fmt"
	"strings"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
)

// Engine runs the composition operations against one LLM model
type Engine struct {
	llm     adapter.LLM
	prompts *prompt.Registry
	model   string
}

// New creates a composition engine
func New(llm adapter.LLM, prompts *prompt.Registry, modelName string) *Engine {
	return &Engine{llm: llm, prompts: prompts, model: modelName}
}

// formatChunks renders chunks for prompt embedding, one line per chunk with
// its index and attribution
func formatChunks(chunks []model.TranscriptChunk) string {
	var b strings.Builder
	for _, chunk := range chunks {
		speaker := string(chunk.SpeakerRole)
		if chunk.SpeakerName != "" {
			speaker = chunk.SpeakerName + ", " + speaker
		}
		fmt.Fprintf(&b, "[%d] (%s) %s\n", chunk.ChunkIndex, speaker, chunk.Text)
	}
	return b.String()
}

// attributionRatio is the fraction of chunks carrying a known speaker name
func attributionRatio(chunks []model.TranscriptChunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	var attributed int
	for _, chunk := range chunks {
		if chunk.SpeakerName != "" {
			attributed++
		}
	}
	return float64(attributed) / float64(len(chunks))
}

// customerChunks filters chunks down to the customer's voice
func customerChunks(chunks []model.TranscriptChunk) []model.TranscriptChunk {
	var out []model.TranscriptChunk
	for _, chunk := range chunks {
		if chunk.SpeakerRole == model.RoleCustomer {
			out = append(out, chunk)
		}
	}
	return out
}
