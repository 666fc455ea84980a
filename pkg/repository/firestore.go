package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

const (
	collTranscripts     = "transcripts"
	collChunks          = "chunks"
	collQAPairs         = "qa_pairs"
	collActionItems     = "action_items"
	collCompanies       = "companies"
	collProcessedEvents = "processed_events"
)

// firestoreRepo implements Repository using Firestore. When the dedupe write
// fails with a backend error, a bounded in-memory fallback keeps the bot
// available at the cost of strict exactly-once.
type firestoreRepo struct {
	client *firestore.Client
	dedupe *memoryDedupe
}

// NewFirestore creates a Firestore-backed repository
func NewFirestore(ctx context.Context, projectID, databaseName string) (Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseName))
	}

	return &firestoreRepo{
		client: client,
		dedupe: newMemoryDedupe(),
	}, nil
}

func (r *firestoreRepo) GetTranscriptByID(ctx context.Context, id model.TranscriptID) (*model.Transcript, error) {
	doc, err := r.client.Collection(collTranscripts).Doc(string(id)).Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get transcript", goerr.V("transcript_id", id))
	}

	var transcript model.Transcript
	if err := doc.DataTo(&transcript); err != nil {
		return nil, goerr.Wrap(err, "failed to decode transcript", goerr.V("transcript_id", id))
	}
	transcript.ID = id

	return &transcript, nil
}

func (r *firestoreRepo) GetChunksForTranscript(ctx context.Context, id model.TranscriptID, limit int) ([]model.TranscriptChunk, error) {
	query := r.client.Collection(collChunks).
		Where("transcriptId", "==", string(id)).
		OrderBy("chunkIndex", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var chunks []model.TranscriptChunk
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate chunks", goerr.V("transcript_id", id))
		}

		var chunk model.TranscriptChunk
		if err := doc.DataTo(&chunk); err != nil {
			return nil, goerr.Wrap(err, "failed to decode chunk", goerr.V("doc", doc.Ref.ID))
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

func (r *firestoreRepo) GetQAPairsByTranscriptID(ctx context.Context, id model.TranscriptID) ([]model.QAPair, error) {
	iter := r.client.Collection(collQAPairs).
		Where("transcriptId", "==", string(id)).
		Documents(ctx)
	defer iter.Stop()

	var pairs []model.QAPair
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate qa pairs", goerr.V("transcript_id", id))
		}

		var pair model.QAPair
		if err := doc.DataTo(&pair); err != nil {
			return nil, goerr.Wrap(err, "failed to decode qa pair", goerr.V("doc", doc.Ref.ID))
		}
		pairs = append(pairs, pair)
	}

	return pairs, nil
}

func (r *firestoreRepo) GetMeetingActionItemsByTranscript(ctx context.Context, id model.TranscriptID) ([]model.MeetingActionItem, error) {
	iter := r.client.Collection(collActionItems).
		Where("transcriptId", "==", string(id)).
		Documents(ctx)
	defer iter.Stop()

	var items []model.MeetingActionItem
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate action items", goerr.V("transcript_id", id))
		}

		var item model.MeetingActionItem
		if err := doc.DataTo(&item); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action item", goerr.V("doc", doc.Ref.ID))
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *firestoreRepo) ListCompanyNames(ctx context.Context) ([]string, error) {
	iter := r.client.Collection(collCompanies).Documents(ctx)
	defer iter.Stop()

	var names []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate companies")
		}

		var company struct {
			Name string `firestore:"name"`
		}
		if err := doc.DataTo(&company); err != nil {
			return nil, goerr.Wrap(err, "failed to decode company", goerr.V("doc", doc.Ref.ID))
		}
		if company.Name != "" {
			names = append(names, company.Name)
		}
	}

	return names, nil
}

func (r *firestoreRepo) ListTranscriptsByCompany(ctx context.Context, companyName string) ([]*model.Transcript, error) {
	iter := r.client.Collection(collTranscripts).
		Where("companyName", "==", companyName).
		Documents(ctx)
	defer iter.Stop()

	var transcripts []*model.Transcript
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate transcripts", goerr.V("company", companyName))
		}

		var transcript model.Transcript
		if err := doc.DataTo(&transcript); err != nil {
			return nil, goerr.Wrap(err, "failed to decode transcript", goerr.V("doc", doc.Ref.ID))
		}
		transcript.ID = model.TranscriptID(doc.Ref.ID)
		transcripts = append(transcripts, &transcript)
	}

	return transcripts, nil
}

// MarkEventProcessed uses Create (first-writer-wins) for atomic dedupe.
// AlreadyExists means another worker claimed the event. Any other backend
// error falls back to the in-memory map: availability over exactly-once
// during a storage outage.
func (r *firestoreRepo) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	_, err := r.client.Collection(collProcessedEvents).Doc(eventID).Create(ctx, map[string]any{
		"processedAt": firestore.ServerTimestamp,
	})
	if err == nil {
		return true, nil
	}
	if status.Code(err) == codes.AlreadyExists {
		return false, nil
	}

	logging.From(ctx).Warn("dedupe store unavailable, using in-memory fallback",
		"event_id", eventID, "error", err)
	return r.dedupe.mark(eventID), nil
}
