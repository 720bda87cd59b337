package core

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single produced utterance. After creation it is treated as
// immutable; messages are never edited or deleted, only appended to a
// transcript in production order.
type Message struct {
	ID        string    `json:"id"`
	Speaker   string    `json:"speaker"` // persona id
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message authored by the given persona with a fresh
// unique id and a UTC timestamp.
func NewMessage(speaker, text string) Message {
	return Message{
		ID:        NewID(),
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for messages.
func NewID() string { return uuid.NewString() }
