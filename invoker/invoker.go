// Package invoker performs one resilient model call per dialogue turn. It
// owns the payload boundary: structured (speaker, text) history is flattened
// onto the single-role "Name: text" wire transcript here and nowhere else,
// preserving interoperability with the endpoint's single-role convention.
package invoker

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/duolog/core"
	"github.com/hupe1980/duolog/history"
	"github.com/hupe1980/duolog/logging"
	"github.com/hupe1980/duolog/model"
)

const (
	// DefaultMaxRetries is the total number of call attempts per turn.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the backoff unit: attempt i (0-indexed) waits
	// 2^i * DefaultBaseDelay before the next attempt.
	DefaultBaseDelay = 1000 * time.Millisecond
	// DefaultTemperature is the fixed sampling temperature for all turns.
	DefaultTemperature = 0.8
)

// Options configure an Invoker.
type Options struct {
	MaxRetries  int
	BaseDelay   time.Duration
	Temperature float64
	WindowSize  int
	Logger      logging.Logger
	// Sleep overrides the backoff wait, letting tests observe delays
	// without wall-clock time.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Invoker builds the bounded wire context for a persona's turn and calls the
// model with retry and exponential backoff. It holds no mutable state; Invoke
// is a pure function of its inputs plus the backoff delays.
type Invoker struct {
	registry *core.Registry
	mdl      model.Model
	opts     Options
}

// New constructs an Invoker for the given persona registry and model backend.
func New(registry *core.Registry, mdl model.Model, optFns ...func(o *Options)) *Invoker {
	opts := Options{
		MaxRetries:  DefaultMaxRetries,
		BaseDelay:   DefaultBaseDelay,
		Temperature: DefaultTemperature,
		WindowSize:  history.DefaultWindowSize,
		Logger:      logging.NoOpLogger{},
		Sleep:       sleep,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{registry: registry, mdl: mdl, opts: opts}
}

// Invoke produces the text of one turn spoken by persona. The prompt is what
// the opposing persona just said (or the fixed opening prompt); msgs is the
// transcript up to but not including the message the prompt came from. The
// combined sequence is windowed so the wire context never exceeds the
// configured bound.
//
// Every transport-level or structurally-empty failure is retried with
// exponential backoff until the attempt budget is exhausted, after which an
// *core.InvocationError carrying the persona id and last failure is returned.
func (inv *Invoker) Invoke(ctx context.Context, persona core.Persona, prompt string, msgs []core.Message) (string, error) {
	opponent, err := inv.registry.OpponentOf(persona.ID)
	if err != nil {
		return "", err
	}

	req := model.Request{
		Instruction:     persona.Instruction,
		Turns:           inv.buildTurns(msgs, opponent.ID, prompt),
		Temperature:     inv.opts.Temperature,
		EnableRetrieval: persona.UsesRetrieval,
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < inv.opts.MaxRetries; attempt++ {
		resp, err := inv.mdl.Generate(ctx, req)
		if err == nil {
			inv.logCall(persona.ID, attempt+1, start, nil)
			return normalize(persona.ID, resp.Text), nil
		}
		lastErr = err
		inv.opts.Logger.Warn("model call attempt failed", "persona", persona.ID, "attempt", attempt+1, "error", err)

		// No wait after the final attempt.
		if attempt == inv.opts.MaxRetries-1 {
			break
		}
		delay := inv.opts.BaseDelay << attempt
		if err := inv.opts.Sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	invErr := &core.InvocationError{PersonaID: persona.ID, Err: lastErr}
	inv.logCall(persona.ID, inv.opts.MaxRetries, start, invErr)
	return "", invErr
}

// buildTurns flattens the windowed history plus the prompt (attributed to the
// opponent) onto the single-role wire transcript.
func (inv *Invoker) buildTurns(msgs []core.Message, opponentID, prompt string) []model.Turn {
	entries := history.Window(msgs, inv.opts.WindowSize)
	entries = append(entries, history.Entry{Speaker: opponentID, Text: prompt})
	if len(entries) > inv.opts.WindowSize {
		entries = entries[len(entries)-inv.opts.WindowSize:]
	}
	turns := make([]model.Turn, len(entries))
	for i, e := range entries {
		turns[i] = model.Turn{Role: "user", Text: e.Speaker + ": " + e.Text}
	}
	return turns
}

func (inv *Invoker) logCall(personaID string, attempts int, start time.Time, err error) {
	if dl, ok := inv.opts.Logger.(*logging.DialogueLogger); ok {
		dl.LogModelCall(inv.mdl.Info().Provider, personaID, attempts, time.Since(start), err)
	}
}

// normalize strips exactly one "<personaID>: " self-signature prefix. Some
// responses echo the persona's own name; a repeated echo is left untouched.
func normalize(personaID, text string) string {
	return strings.TrimPrefix(text, personaID+": ")
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
