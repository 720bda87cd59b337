package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/duolog/core"
	"github.com/hupe1980/duolog/transcript"
)

// invokerFunc adapts a function to the TurnInvoker interface.
type invokerFunc func(ctx context.Context, persona core.Persona, prompt string, msgs []core.Message) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, persona core.Persona, prompt string, msgs []core.Message) (string, error) {
	return f(ctx, persona, prompt, msgs)
}

// blockingInvoker parks every call until released.
type blockingInvoker struct {
	entered chan struct{}
	release chan struct{}
	text    string
}

func newBlockingInvoker(text string) *blockingInvoker {
	return &blockingInvoker{entered: make(chan struct{}, 8), release: make(chan struct{}), text: text}
}

func (b *blockingInvoker) Invoke(context.Context, core.Persona, string, []core.Message) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.text, nil
}

func testRegistry(t *testing.T) *core.Registry {
	t.Helper()
	r, err := core.NewRegistry(
		core.Persona{ID: "Gemini", Instruction: "analytic"},
		core.Persona{ID: "Muse", Instruction: "creative"},
	)
	require.NoError(t, err)
	return r
}

// fastOpts makes pacing effectively immediate for tests.
func fastOpts(o *Options) {
	o.OpeningDelay = time.Millisecond
	o.MinDelay = time.Millisecond
	o.MaxDelay = 2 * time.Millisecond
}

func TestScheduler_AlternationAndSeed(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()

	var mu sync.Mutex
	var prompts []string
	inv := invokerFunc(func(_ context.Context, persona core.Persona, prompt string, _ []core.Message) (string, error) {
		mu.Lock()
		prompts = append(prompts, prompt)
		mu.Unlock()
		return "reply from " + persona.ID, nil
	})

	s := New(reg, store, "conv", inv, fastOpts)
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		tr, _ := store.Get("conv")
		return tr.Len() >= 4
	}, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	tr, _ := store.Get("conv")
	msgs := tr.All()
	require.GreaterOrEqual(t, len(msgs), 4)

	// First speaker is the fixed starter, then strict alternation.
	assert.Equal(t, "Gemini", msgs[0].Speaker)
	for i := 1; i < len(msgs); i++ {
		assert.NotEqual(t, msgs[i-1].Speaker, msgs[i].Speaker, "messages %d and %d share a speaker", i-1, i)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, SeedPrompt, prompts[0])
	// Each later prompt is the text the opponent just produced.
	assert.Equal(t, "reply from Gemini", prompts[1])
}

func TestScheduler_NoOverlappingTurns(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()
	blocking := newBlockingInvoker("slow reply")

	s := New(reg, store, "conv", blocking, fastOpts)
	s.Start(context.Background())
	defer s.Stop()

	<-blocking.entered
	assert.Equal(t, "thinking", s.Snapshot().State)

	// A second trigger while thinking must be ignored and must not start
	// a second call.
	s.takeTurn()
	assert.Equal(t, "thinking", s.Snapshot().State)
	select {
	case <-blocking.entered:
		t.Fatal("a second invocation was started while thinking")
	default:
	}

	close(blocking.release)
	require.Eventually(t, func() bool {
		tr, _ := store.Get("conv")
		return tr.Len() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_StopDiscardsInFlight(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()
	blocking := newBlockingInvoker("late reply")

	s := New(reg, store, "conv", blocking, fastOpts)
	s.Start(context.Background())

	<-blocking.entered
	s.Stop()
	close(blocking.release)

	// The resolved result must be dropped: nothing stored, no further turn.
	time.Sleep(50 * time.Millisecond)
	tr, _ := store.Get("conv")
	assert.Equal(t, 0, tr.Len())

	snap := s.Snapshot()
	assert.False(t, snap.Active)
	assert.Equal(t, "idle", snap.State)
}

func TestScheduler_StopCancelsPendingTimer(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()

	var calls int
	var mu sync.Mutex
	inv := invokerFunc(func(context.Context, core.Persona, string, []core.Message) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "reply", nil
	})

	s := New(reg, store, "conv", inv, func(o *Options) {
		o.OpeningDelay = 80 * time.Millisecond
	})
	s.Start(context.Background())
	s.Stop()

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls, "a queued turn ran after Stop")
}

func TestScheduler_InvokerFailureHaltsLoop(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()
	_ = store.Append("conv", core.NewMessage("Gemini", "before failure"))

	invErr := &core.InvocationError{PersonaID: "Muse", Err: errors.New("all attempts failed")}
	inv := invokerFunc(func(context.Context, core.Persona, string, []core.Message) (string, error) {
		return "", invErr
	})

	s := New(reg, store, "conv", inv, fastOpts)
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return s.Snapshot().State == "stopped"
	}, time.Second, 5*time.Millisecond)

	snap := s.Snapshot()
	assert.False(t, snap.Active)
	assert.Contains(t, snap.LastError, "all attempts failed")

	// Store unchanged from before the failed turn.
	tr, _ := store.Get("conv")
	require.Equal(t, 1, tr.Len())
	assert.Equal(t, "before failure", tr.All()[0].Text)
}

func TestScheduler_RestartAfterFailure(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()

	var mu sync.Mutex
	fail := true
	inv := invokerFunc(func(_ context.Context, persona core.Persona, _ string, _ []core.Message) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return "", &core.InvocationError{PersonaID: persona.ID, Err: errors.New("endpoint down")}
		}
		return "recovered", nil
	})

	s := New(reg, store, "conv", inv, fastOpts)
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return s.Snapshot().State == "stopped"
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	fail = false
	mu.Unlock()

	// External reactivation clears the error and resumes turns.
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		tr, _ := store.Get("conv")
		return tr.Len() >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, s.Snapshot().LastError)
}

func TestScheduler_MaxTurnsDeactivates(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()

	inv := invokerFunc(func(_ context.Context, persona core.Persona, _ string, _ []core.Message) (string, error) {
		return "reply from " + persona.ID, nil
	})

	s := New(reg, store, "conv", inv, fastOpts, func(o *Options) {
		o.MaxTurns = 3
	})
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return !s.Snapshot().Active
	}, 2*time.Second, 5*time.Millisecond)

	tr, _ := store.Get("conv")
	assert.Equal(t, 3, tr.Len())

	// The cap is not a failure: no recorded error, loop merely inactive.
	snap := s.Snapshot()
	assert.Equal(t, "idle", snap.State)
	assert.Empty(t, snap.LastError)

	// Restarting grants a fresh budget.
	s.Start(context.Background())
	defer s.Stop()
	require.Eventually(t, func() bool {
		tr, _ := store.Get("conv")
		return tr.Len() >= 4
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_Toggle(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()
	s := New(reg, store, "conv", invokerFunc(func(context.Context, core.Persona, string, []core.Message) (string, error) {
		return "reply", nil
	}), func(o *Options) {
		o.OpeningDelay = time.Hour // never fires during the test
	})

	assert.True(t, s.Toggle(context.Background()))
	assert.True(t, s.Snapshot().Active)
	assert.False(t, s.Toggle(context.Background()))
	assert.False(t, s.Snapshot().Active)
}

func TestScheduler_OnChangeNotifies(t *testing.T) {
	reg := testRegistry(t)
	store := transcript.NewInMemoryStore()

	var mu sync.Mutex
	var states []string
	s := New(reg, store, "conv", invokerFunc(func(context.Context, core.Persona, string, []core.Message) (string, error) {
		return "reply", nil
	}), fastOpts, func(o *Options) {
		o.OnChange = func(snap Snapshot) {
			mu.Lock()
			states = append(states, snap.State)
			mu.Unlock()
		}
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		tr, _ := store.Get("conv")
		return tr.Len() >= 1
	}, time.Second, 5*time.Millisecond)
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, "thinking")
	assert.Contains(t, states, "idle")
}
