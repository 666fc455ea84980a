package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/leverege/meetingmind/pkg/model"
)

// DocumentStore holds the raw transcript documents (the source text the
// chunks were cut from). The core only reads; writes happen at ingest time
// outside this module.
type DocumentStore interface {
	// GetTranscriptDocument loads the raw document for a transcript
	GetTranscriptDocument(ctx context.Context, id model.TranscriptID) (io.ReadCloser, error)
	// PutTranscriptDocument returns a writer for storing a raw document
	PutTranscriptDocument(ctx context.Context, id model.TranscriptID) (io.WriteCloser, error)
}

// gcsDocumentStore implements DocumentStore using Cloud Storage
type gcsDocumentStore struct {
	bucketName string
	client     *storage.Client
}

// NewDocumentStore creates a Cloud Storage backed document store
func NewDocumentStore(ctx context.Context, bucketName string) (DocumentStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &gcsDocumentStore{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func objectKey(id model.TranscriptID) string {
	return "transcripts/" + string(id) + ".txt"
}

func (s *gcsDocumentStore) GetTranscriptDocument(ctx context.Context, id model.TranscriptID) (io.ReadCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(objectKey(id))
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read transcript document", goerr.V("transcript_id", id))
	}

	return reader, nil
}

func (s *gcsDocumentStore) PutTranscriptDocument(ctx context.Context, id model.TranscriptID) (io.WriteCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(objectKey(id))
	return obj.NewWriter(ctx), nil
}
