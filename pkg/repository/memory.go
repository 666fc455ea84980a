package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/leverege/meetingmind/pkg/model"
)

// Memory is an in-memory Repository used by tests and local demos. Seed it
// directly through the exported fields before use.
type Memory struct {
	mu sync.RWMutex

	Transcripts map[model.TranscriptID]*model.Transcript
	Chunks      map[model.TranscriptID][]model.TranscriptChunk
	QAPairs     map[model.TranscriptID][]model.QAPair
	ActionItems map[model.TranscriptID][]model.MeetingActionItem
	Companies   []string

	processed map[string]bool
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		Transcripts: make(map[model.TranscriptID]*model.Transcript),
		Chunks:      make(map[model.TranscriptID][]model.TranscriptChunk),
		QAPairs:     make(map[model.TranscriptID][]model.QAPair),
		ActionItems: make(map[model.TranscriptID][]model.MeetingActionItem),
		processed:   make(map[string]bool),
	}
}

func (m *Memory) GetTranscriptByID(ctx context.Context, id model.TranscriptID) (*model.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	transcript, ok := m.Transcripts[id]
	if !ok {
		return nil, goerr.New("transcript not found", goerr.V("transcript_id", id))
	}
	return transcript, nil
}

func (m *Memory) GetChunksForTranscript(ctx context.Context, id model.TranscriptID, limit int) ([]model.TranscriptChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chunks := make([]model.TranscriptChunk, len(m.Chunks[id]))
	copy(chunks, m.Chunks[id])
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })

	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

func (m *Memory) GetQAPairsByTranscriptID(ctx context.Context, id model.TranscriptID) ([]model.QAPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.QAPair(nil), m.QAPairs[id]...), nil
}

func (m *Memory) GetMeetingActionItemsByTranscript(ctx context.Context, id model.TranscriptID) ([]model.MeetingActionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.MeetingActionItem(nil), m.ActionItems[id]...), nil
}

func (m *Memory) ListCompanyNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.Companies...), nil
}

func (m *Memory) ListTranscriptsByCompany(ctx context.Context, companyName string) ([]*model.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.Transcript
	for _, t := range m.Transcripts {
		if t.CompanyName == companyName {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed[eventID] {
		return false, nil
	}
	m.processed[eventID] = true
	return true, nil
}
