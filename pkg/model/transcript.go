package model

import (
	"time"

	"github.com/google/uuid"
)

type TranscriptID string

// NewTranscriptID generates a new unique TranscriptID
func NewTranscriptID() TranscriptID {
	return TranscriptID(uuid.New().String())
}

// SpeakerRole identifies which side of the call a chunk belongs to
type SpeakerRole string

const (
	RoleLeverege SpeakerRole = "leverege"
	RoleCustomer SpeakerRole = "customer"
	RoleUnknown  SpeakerRole = "unknown"
)

// TranscriptSource distinguishes verbatim transcripts from informal notes.
// Quote selection only runs against verbatim transcripts.
type TranscriptSource string

const (
	SourceTranscript TranscriptSource = "transcript"
	SourceNotes      TranscriptSource = "notes"
)

// Transcript is the metadata record for one recorded meeting
type Transcript struct {
	ID          TranscriptID
	CompanyName string
	Title       string
	Source      TranscriptSource
	Attendees   []Attendee
	MeetingDate time.Time
	CreatedAt   time.Time
}

// Attendee is one participant from transcript metadata. The attendee list is
// the canonical name set used for action-item owner normalization.
type Attendee struct {
	Name string      `json:"name"`
	Role SpeakerRole `json:"role"`
}

// TranscriptChunk is the ordered unit of transcript evidence. It is the
// source of truth for all extractive claims; the core never mutates it.
type TranscriptChunk struct {
	TranscriptID TranscriptID `json:"transcriptId"`
	ChunkIndex   int          `json:"chunkIndex"`
	SpeakerRole  SpeakerRole  `json:"speakerRole"`
	SpeakerName  string       `json:"speakerName,omitempty"`
	Text         string       `json:"text"`
}

// QAPair is a stored question/answer extracted from a transcript
type QAPair struct {
	TranscriptID TranscriptID `json:"transcriptId"`
	Question     string       `json:"question"`
	Answer       string       `json:"answer"`
	ChunkIndex   int          `json:"chunkIndex"`
}

// SelectedQuote is a customer-voice quote chosen under the attribution gate
type SelectedQuote struct {
	ChunkIndex  int         `json:"chunkIndex"`
	SpeakerRole SpeakerRole `json:"speakerRole"`
	Quote       string      `json:"quote"`
	Reason      string      `json:"reason"`
}

// ActionItemType categorizes what kind of commitment an action item captures
type ActionItemType string

const (
	ActionCommitment ActionItemType = "commitment"
	ActionRequest    ActionItemType = "request"
	ActionBlocker    ActionItemType = "blocker"
	ActionPlan       ActionItemType = "plan"
	ActionScheduling ActionItemType = "scheduling"
)

// DeadlineNotSpecified is the normalized value for a missing deadline
const DeadlineNotSpecified = "Not specified"

// MeetingActionItem is one extracted follow-up. Owner is normalized against
// the canonical attendee list; Evidence is a verbatim-derived quote from the
// transcript.
type MeetingActionItem struct {
	Action     string         `json:"action"`
	Owner      string         `json:"owner"`
	Type       ActionItemType `json:"type"`
	Deadline   string         `json:"deadline"`
	Evidence   string         `json:"evidence"`
	Confidence float64        `json:"confidence"`
	IsPrimary  bool           `json:"isPrimary"`
}

// MeetingSummary is the structured output of the summary composition op.
// Empty sections read "None detected"; they are never invented.
type MeetingSummary struct {
	Title                string   `json:"title"`
	Purpose              string   `json:"purpose"`
	FocusAreas           []string `json:"focusAreas"`
	KeyTakeaways         []string `json:"keyTakeaways"`
	RisksOrOpenQuestions []string `json:"risksOrOpenQuestions"`
	RecommendedNextSteps []string `json:"recommendedNextSteps"`
}

// TranscriptInsights is the structured output of the insight extraction op
type TranscriptInsights struct {
	Insights  []string `json:"insights"`
	QAPairs   []QAPair `json:"qaPairs"`
	POSSystem string   `json:"posSystem"`
}
