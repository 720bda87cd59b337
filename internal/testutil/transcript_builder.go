package testutil

import (
	"fmt"

	"github.com/hupe1980/duolog/core"
)

// TranscriptBuilder helps construct transcripts with fluent chaining for tests.
// Example:
//
//	tr := NewTranscriptBuilder("conv-1").Say("Gemini", "hi").Say("Muse", "hello").Build()
type TranscriptBuilder struct {
	id       string
	messages []core.Message
}

// NewTranscriptBuilder creates a new builder for a transcript with the given
// id. Use chainable methods (Say, Message, Alternating) then call Build.
func NewTranscriptBuilder(id string) *TranscriptBuilder { return &TranscriptBuilder{id: id} }

// Say appends a message from the given speaker (chainable).
func (b *TranscriptBuilder) Say(speaker, text string) *TranscriptBuilder {
	b.messages = append(b.messages, core.NewMessage(speaker, text))
	return b
}

// Message appends a pre-built message (chainable).
func (b *TranscriptBuilder) Message(msg core.Message) *TranscriptBuilder {
	b.messages = append(b.messages, msg)
	return b
}

// Alternating appends n numbered messages alternating between the two
// speakers, starting with first (chainable). Message i carries the text
// "msg-i", counting from 0.
func (b *TranscriptBuilder) Alternating(first, second string, n int) *TranscriptBuilder {
	for i := 0; i < n; i++ {
		speaker := first
		if i%2 == 1 {
			speaker = second
		}
		b.messages = append(b.messages, core.NewMessage(speaker, fmt.Sprintf("msg-%d", i)))
	}
	return b
}

// Build returns a *core.Transcript with the accumulated messages appended in
// order.
func (b *TranscriptBuilder) Build() *core.Transcript {
	tr := core.NewTranscript(b.id)
	for _, msg := range b.messages {
		tr.Append(msg)
	}
	return tr
}

// Messages returns the accumulated messages without wrapping them in a
// transcript.
func (b *TranscriptBuilder) Messages() []core.Message {
	return append([]core.Message{}, b.messages...)
}
