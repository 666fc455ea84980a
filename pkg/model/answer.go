package model

import (
	"github.com/google/uuid"
)

type RequestID string

// NewRequestID generates a new unique RequestID
func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}

// Request is one incoming question from the sales team
type Request struct {
	ID            RequestID
	Question      string
	TranscriptID  TranscriptID // optional: pins the question to one meeting
	ThreadContext string       // optional: prior conversation text
}

// DataSource names where the answer's supporting data came from
type DataSource string

const (
	DataSourceMeeting  DataSource = "meeting"
	DataSourceMeetings DataSource = "meetings"
	DataSourceProduct  DataSource = "product_ssot"
	DataSourceNone     DataSource = "none"
)

// PromptUsage maps prompt identifiers to the version strings consumed while
// producing one response. It is the audit trail that lets incidents be traced
// back to the exact prompt text involved.
type PromptUsage map[string]string

// Merge folds another usage map into this one
func (p PromptUsage) Merge(other PromptUsage) {
	for id, version := range other {
		p[id] = version
	}
}

// Evidence is one citation attached to an answer
type Evidence struct {
	ChunkIndex int    `json:"chunkIndex"`
	Text       string `json:"text"`
}

// Answer is the response contract handed to the presentation layer
type Answer struct {
	Text           string         `json:"answer"`
	Intent         Intent         `json:"intent"`
	Contract       AnswerContract `json:"contract"`
	DataSource     DataSource     `json:"dataSource"`
	Evidence       []Evidence     `json:"evidence,omitempty"`
	Confidence     float64        `json:"confidence,omitempty"`
	PromptVersions PromptUsage    `json:"promptVersions,omitempty"`
}

// ExtractedAnswer is the strict result shape of the extractive Q&A op.
// WasFound=false is a valid, expected outcome: the system never guesses to
// avoid an empty answer.
type ExtractedAnswer struct {
	Answer   string `json:"answer"`
	Evidence string `json:"evidence"`
	WasFound bool   `json:"wasFound"`
}
