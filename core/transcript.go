package core

import (
	"sync"
	"time"
)

// Transcript is the ordered, append-only log of one conversation. It is safe
// for concurrent access.
//
// Contract:
//   - Append preserves production order; entries are never mutated
//   - Messages returns a defensive copy to avoid external mutation
//   - Last reports the most recent entry without copying the whole log
type Transcript struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
	mu       sync.RWMutex
}

// NewTranscript creates an empty transcript with the given id.
func NewTranscript(id string) *Transcript {
	now := time.Now().UTC()
	return &Transcript{ID: id, Messages: []Message{}, Created: now, Updated: now}
}

// Append adds a message to the log updating the Updated timestamp.
func (t *Transcript) Append(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, msg)
	t.Updated = time.Now().UTC()
}

// All returns a defensive copy of the full message slice.
func (t *Transcript) All() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msgs := make([]Message, len(t.Messages))
	copy(msgs, t.Messages)
	return msgs
}

// Last returns the most recent message, or false when the log is empty.
func (t *Transcript) Last() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.Messages) == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}

// Len returns the number of messages in the log.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Messages)
}

// Clone returns a deep copy of the transcript safe for independent use.
func (t *Transcript) Clone() *Transcript {
	t.mu.RLock()
	defer t.mu.RUnlock()
	clone := &Transcript{ID: t.ID, Messages: make([]Message, len(t.Messages)), Created: t.Created, Updated: t.Updated}
	copy(clone.Messages, t.Messages)
	return clone
}

// TranscriptStore persists transcripts for the lifetime of the process.
// The scheduler is the single writer; the windower and any observation
// surface only read.
type TranscriptStore interface {
	Create(id string) (*Transcript, error)
	Get(id string) (*Transcript, error)
	Append(transcriptID string, msg Message) error
}
