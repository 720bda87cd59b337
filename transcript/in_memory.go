package transcript

import (
	"sync"

	"github.com/hupe1980/duolog/core"
)

// InMemoryStore is a volatile TranscriptStore implementation holding
// transcripts in a process local map. It is safe for concurrent access.
// The conversation exists only for the lifetime of the process; there is
// deliberately no durable backend.
type InMemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string]*core.Transcript
}

// NewInMemoryStore constructs an empty in-memory transcript store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{transcripts: make(map[string]*core.Transcript)}
}

// Get returns an existing transcript or creates a new one lazily.
func (s *InMemoryStore) Get(id string) (*core.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tr, ok := s.transcripts[id]; ok {
		return tr, nil
	}
	return s.createLocked(id), nil
}

// Create forces the creation (or resetting) of a transcript with the given id.
func (s *InMemoryStore) Create(id string) (*core.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(id), nil
}

// Append adds a message to an existing or newly created transcript.
func (s *InMemoryStore) Append(id string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.transcripts[id]
	if !ok {
		tr = s.createLocked(id)
	}
	tr.Append(msg)
	return nil
}

// createLocked allocates and stores a new transcript; caller must already
// hold the write lock.
func (s *InMemoryStore) createLocked(id string) *core.Transcript {
	tr := core.NewTranscript(id)
	s.transcripts[id] = tr
	return tr
}
