package testutil

import (
	"time"

	"github.com/hupe1980/duolog/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Speaker("Gemini").Text("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	id        string
	speaker   string
	text      string
	createdAt time.Time
}

// NewMessageBuilder creates a builder with default speaker "Gemini".
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{speaker: "Gemini"} }

// ID overrides the auto-generated message ID (chainable). Use mainly in tests
// where determinism matters.
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Speaker sets the persona identifier attributed to the message (chainable).
func (b *MessageBuilder) Speaker(s string) *MessageBuilder { b.speaker = s; return b }

// Text sets the message body (chainable).
func (b *MessageBuilder) Text(t string) *MessageBuilder { b.text = t; return b }

// CreatedAt overrides the message timestamp (chainable).
func (b *MessageBuilder) CreatedAt(ts time.Time) *MessageBuilder { b.createdAt = ts; return b }

// Build constructs the core.Message value.
func (b *MessageBuilder) Build() core.Message {
	msg := core.NewMessage(b.speaker, b.text)
	if b.id != "" {
		msg.ID = b.id
	}
	if !b.createdAt.IsZero() {
		msg.CreatedAt = b.createdAt
	}
	return msg
}
