// Package history turns the growing conversation transcript into the bounded
// context consumed by model calls. The transform is pure and stable so turns
// stay reproducible in tests: same input, same output, no reordering and no
// summarization.
package history

import "github.com/hupe1980/duolog/core"

// DefaultWindowSize is the maximum number of transcript entries forwarded as
// model context.
const DefaultWindowSize = 20

// Entry is one speaker-attributed line of bounded context. The speaker tag is
// kept structured here; flattening onto the wire transcript happens at the
// invoker's payload boundary.
type Entry struct {
	Speaker string
	Text    string
}

// Window returns the most recent max messages as attributed entries in their
// original order. When the log is shorter than max it is returned whole.
func Window(msgs []core.Message, max int) []Entry {
	if max <= 0 {
		max = DefaultWindowSize
	}
	if len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	entries := make([]Entry, len(msgs))
	for i, m := range msgs {
		entries[i] = Entry{Speaker: m.Speaker, Text: m.Text}
	}
	return entries
}
