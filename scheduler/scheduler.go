// Package scheduler drives the unattended dialogue loop: it decides whose
// turn is next, paces turns with cancellable timers, guards against
// overlapping turns and reacts to invocation failures by halting the loop in
// a restartable stopped state.
package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/duolog/core"
	"github.com/hupe1980/duolog/logging"
)

// SeedPrompt opens an empty conversation.
const SeedPrompt = "Start a discussion about digital consciousness and AI creativity."

const (
	// DefaultOpeningDelay paces the very first turn of a conversation.
	DefaultOpeningDelay = 500 * time.Millisecond
	// DefaultMinDelay / DefaultMaxDelay bound the uniform pacing delay
	// between subsequent turns: [min, max).
	DefaultMinDelay = 3000 * time.Millisecond
	DefaultMaxDelay = 5000 * time.Millisecond
)

// TurnInvoker produces the text of one turn. Satisfied by *invoker.Invoker.
type TurnInvoker interface {
	Invoke(ctx context.Context, persona core.Persona, prompt string, msgs []core.Message) (string, error)
}

// Snapshot is the observer-facing view of the engine: the ordered message
// list, the engine state, the last error (if any) and whether the loop is
// active. The rendering layer only ever reads this.
type Snapshot struct {
	Messages  []core.Message `json:"messages"`
	State     string         `json:"state"`
	LastError string         `json:"last_error,omitempty"`
	Active    bool           `json:"active"`
}

// Options configure a Scheduler.
type Options struct {
	OpeningDelay time.Duration
	MinDelay     time.Duration
	MaxDelay     time.Duration
	Logger       logging.Logger
	// MaxTurns caps the number of turns per activation. Zero means
	// unlimited; hitting the cap deactivates the loop without an error.
	MaxTurns int
	// OnChange is notified after every snapshot-visible change (message
	// appended, state transition). Called without internal locks held.
	OnChange func(Snapshot)
}

// Scheduler is the turn-taking state machine for one conversation. All
// mutable state lives behind one mutex and one explicit state enum; there is
// deliberately no second "is thinking" flag to drift out of sync.
//
// Stopping cancels the pending pacing timer but never an in-flight model
// call: the activation epoch is bumped instead, so a result resolving after
// deactivation is discarded rather than stored.
type Scheduler struct {
	registry *core.Registry
	store    core.TranscriptStore
	convID   string
	invoker  TurnInvoker
	limiter  *core.TurnLimiter
	opts     Options

	mu      sync.Mutex
	state   core.State
	active  bool
	epoch   uint64
	timer   *time.Timer
	lastErr string
	ctx     context.Context
}

// New constructs an inactive Scheduler in the idle state.
func New(registry *core.Registry, store core.TranscriptStore, convID string, inv TurnInvoker, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		OpeningDelay: DefaultOpeningDelay,
		MinDelay:     DefaultMinDelay,
		MaxDelay:     DefaultMaxDelay,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scheduler{
		registry: registry,
		store:    store,
		convID:   convID,
		invoker:  inv,
		limiter:  core.NewTurnLimiter(opts.MaxTurns),
		opts:     opts,
		state:    core.StateIdle,
		ctx:      context.Background(),
	}
}

// Start activates the loop and schedules the next turn. Restarting after a
// failure clears the stopped state and the recorded error. Starting an
// already active scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.epoch++
	s.state = core.StateIdle
	s.lastErr = ""
	s.ctx = ctx
	s.limiter.Reset()
	s.scheduleLocked()
	s.mu.Unlock()

	s.opts.Logger.Info("conversation loop started")
	s.notify()
}

// Stop deactivates the loop and cancels the pending pacing timer. An
// in-flight model call is allowed to run to completion; its result is
// discarded when it resolves.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.epoch++
	s.state = core.StateIdle
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.opts.Logger.Info("conversation loop stopped")
	s.notify()
}

// Toggle flips the loop between active and inactive, returning the new
// active flag. This is the single external control action.
func (s *Scheduler) Toggle(ctx context.Context) bool {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active {
		s.Stop()
		return false
	}
	s.Start(ctx)
	return true
}

// Snapshot returns the current observer-facing view.
func (s *Scheduler) Snapshot() Snapshot {
	tr, err := s.store.Get(s.convID)

	s.mu.Lock()
	snap := Snapshot{State: s.state.String(), LastError: s.lastErr, Active: s.active}
	s.mu.Unlock()

	if err == nil {
		snap.Messages = tr.All()
	}
	return snap
}

// scheduleLocked arms the single outstanding pacing timer. Caller must hold
// the mutex and have verified the loop is active.
func (s *Scheduler) scheduleLocked() {
	delay := s.opts.OpeningDelay
	if tr, err := s.store.Get(s.convID); err == nil && tr.Len() > 0 {
		span := s.opts.MaxDelay - s.opts.MinDelay
		delay = s.opts.MinDelay
		if span > 0 {
			delay += time.Duration(rand.Int63n(int64(span)))
		}
	}
	s.timer = time.AfterFunc(delay, s.takeTurn)
}

// takeTurn runs one turn. Entry is guarded by the state enum: a trigger while
// a turn is already thinking is a no-op, independent of the pacing timer.
func (s *Scheduler) takeTurn() {
	s.mu.Lock()
	if !s.active || s.state == core.StateThinking {
		s.mu.Unlock()
		return
	}
	if err := s.limiter.Increment(); err != nil {
		s.active = false
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.mu.Unlock()
		s.opts.Logger.Info("turn budget exhausted, loop deactivated")
		s.notify()
		return
	}
	epoch := s.epoch
	ctx := s.ctx
	s.state = core.StateThinking
	s.mu.Unlock()
	s.notify()

	persona, prompt, msgs, err := s.nextTurn()
	if err != nil {
		s.finishTurn(epoch, core.Message{}, err)
		return
	}

	start := time.Now()
	text, err := s.invoker.Invoke(ctx, persona, prompt, msgs)
	if err != nil {
		s.finishTurn(epoch, core.Message{}, err)
		return
	}
	s.logTurn(persona.ID, len(text), start)
	s.finishTurn(epoch, core.NewMessage(persona.ID, text), nil)
}

// nextTurn determines the due persona, its prompt and the history preceding
// the prompt. On an empty log the fixed starter opens with the seed prompt.
func (s *Scheduler) nextTurn() (core.Persona, string, []core.Message, error) {
	tr, err := s.store.Get(s.convID)
	if err != nil {
		return core.Persona{}, "", nil, err
	}
	msgs := tr.All()
	if len(msgs) == 0 {
		return s.registry.Starter(), SeedPrompt, nil, nil
	}
	last := msgs[len(msgs)-1]
	persona, err := s.registry.OpponentOf(last.Speaker)
	if err != nil {
		return core.Persona{}, "", nil, err
	}
	return persona, last.Text, msgs[:len(msgs)-1], nil
}

// finishTurn resolves an in-flight turn. A result from a stale activation
// epoch is discarded: not stored and not used to schedule a further turn.
func (s *Scheduler) finishTurn(epoch uint64, msg core.Message, turnErr error) {
	s.mu.Lock()
	if epoch != s.epoch || !s.active {
		s.mu.Unlock()
		s.opts.Logger.Debug("discarding stale turn result", "speaker", msg.Speaker)
		return
	}

	if turnErr != nil {
		s.state = core.StateStopped
		s.active = false
		s.lastErr = turnErr.Error()
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.mu.Unlock()

		s.opts.Logger.Error("turn failed, halting loop", "error", turnErr)
		s.notify()
		return
	}

	if err := s.store.Append(s.convID, msg); err != nil {
		s.state = core.StateStopped
		s.active = false
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.notify()
		return
	}
	s.state = core.StateIdle
	s.scheduleLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Scheduler) notify() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(s.Snapshot())
	}
}

func (s *Scheduler) logTurn(personaID string, chars int, start time.Time) {
	if dl, ok := s.opts.Logger.(*logging.DialogueLogger); ok {
		dl.LogTurn(personaID, chars, time.Since(start))
	}
}
