package repository

import (
	"context"

	"github.com/leverege/meetingmind/pkg/model"
)

// Repository is the retrieval collaborator. All methods are read-only views
// over persisted evidence; the core never writes back into evidence data.
// MarkEventProcessed is the one write, used for event-level dedupe by the
// messaging-facing caller.
type Repository interface {
	// GetTranscriptByID retrieves transcript metadata
	GetTranscriptByID(ctx context.Context, id model.TranscriptID) (*model.Transcript, error)

	// GetChunksForTranscript retrieves up to limit ordered chunks.
	// limit <= 0 means no limit.
	GetChunksForTranscript(ctx context.Context, id model.TranscriptID, limit int) ([]model.TranscriptChunk, error)

	// GetQAPairsByTranscriptID retrieves stored Q&A pairs for a transcript
	GetQAPairsByTranscriptID(ctx context.Context, id model.TranscriptID) ([]model.QAPair, error)

	// GetMeetingActionItemsByTranscript retrieves stored action items
	GetMeetingActionItemsByTranscript(ctx context.Context, id model.TranscriptID) ([]model.MeetingActionItem, error)

	// ListCompanyNames lists the known company names across all transcripts
	ListCompanyNames(ctx context.Context) ([]string, error)

	// ListTranscriptsByCompany retrieves transcript metadata for one company
	ListTranscriptsByCompany(ctx context.Context, companyName string) ([]*model.Transcript, error)

	// MarkEventProcessed records an inbound event ID atomically. It returns
	// true when this call was the first to record the ID (process the
	// event), false when the ID was already present (drop it).
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
}
