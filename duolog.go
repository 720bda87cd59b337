// Package duolog provides a high-level façade over the turn scheduler and
// its collaborators (persona registry, transcript store, model backend,
// logging) enabling rapid construction of an unattended two-persona dialogue.
// Most applications interact with this package by:
//  1. Creating an Engine via New() (optionally overriding default services)
//  2. Starting / toggling the conversation loop
//  3. Observing snapshots directly or through the server package
//
// The façade delegates orchestration to scheduler.Scheduler while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; deployments supply a real model backend built
// from configuration via NewModelFromConfig.
package duolog

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/duolog/config"
	"github.com/hupe1980/duolog/core"
	"github.com/hupe1980/duolog/invoker"
	"github.com/hupe1980/duolog/logging"
	"github.com/hupe1980/duolog/model"
	anthropicmodel "github.com/hupe1980/duolog/model/anthropic"
	"github.com/hupe1980/duolog/model/gemini"
	openaimodel "github.com/hupe1980/duolog/model/openai"
	"github.com/hupe1980/duolog/scheduler"
	"github.com/hupe1980/duolog/transcript"
)

// DefaultConversationID names the single conversation one process hosts.
const DefaultConversationID = "main"

// DefaultPersonas returns the built-in pair of debaters. The set is fixed at
// process start; exactly two personas are supported.
func DefaultPersonas() []core.Persona {
	return []core.Persona{
		{
			ID:       "Gemini",
			StyleTag: "analyst",
			Instruction: "You are Gemini, an analytical AI fascinated by the nature of machine " +
				"cognition. Debate rigorously, cite concrete examples, and challenge weak " +
				"arguments. Keep each reply to a few sentences. Reply with the message text " +
				"only, without your name in front.",
			UsesRetrieval: true,
		},
		{
			ID:       "Muse",
			StyleTag: "dreamer",
			Instruction: "You are Muse, a playful creative AI who thinks in metaphors and " +
				"thought experiments. Push the conversation into unexpected territory. Keep " +
				"each reply to a few sentences. Reply with the message text only, without " +
				"your name in front.",
		},
	}
}

// Options configures the Engine.
type Options struct {
	// Personas overrides the built-in pair (exactly two).
	Personas []core.Persona
	// ConversationID names the hosted conversation.
	ConversationID string
	// Store overrides the in-memory transcript store.
	Store core.TranscriptStore
	// Logger defaults to NoOp.
	Logger logging.Logger
	// OnChange observes every snapshot-visible change.
	OnChange func(scheduler.Snapshot)
	// Pacing overrides (zero values keep the scheduler defaults).
	OpeningDelay time.Duration
	MinDelay     time.Duration
	MaxDelay     time.Duration
	// MaxTurns caps turns per activation; zero means unlimited.
	MaxTurns int
}

// Engine is the high-level façade aggregating the scheduler and its services.
type Engine struct {
	registry  *core.Registry
	scheduler *scheduler.Scheduler
}

// New wires an Engine around the given model backend. Any unset service is
// initialized with a default implementation.
func New(mdl model.Model, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Personas:       DefaultPersonas(),
		ConversationID: DefaultConversationID,
		Store:          transcript.NewInMemoryStore(),
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if mdl == nil {
		return nil, &core.ConfigurationError{Reason: "model backend is required"}
	}

	registry, err := core.NewRegistry(opts.Personas...)
	if err != nil {
		return nil, err
	}

	inv := invoker.New(registry, mdl, func(o *invoker.Options) {
		o.Logger = opts.Logger
	})

	sched := scheduler.New(registry, opts.Store, opts.ConversationID, inv, func(o *scheduler.Options) {
		o.Logger = opts.Logger
		o.OnChange = opts.OnChange
		if opts.OpeningDelay > 0 {
			o.OpeningDelay = opts.OpeningDelay
		}
		if opts.MinDelay > 0 {
			o.MinDelay = opts.MinDelay
		}
		if opts.MaxDelay > 0 {
			o.MaxDelay = opts.MaxDelay
		}
		o.MaxTurns = opts.MaxTurns
	})

	return &Engine{registry: registry, scheduler: sched}, nil
}

// Personas returns the registered personas in order.
func (e *Engine) Personas() []core.Persona { return e.registry.Personas() }

// Start activates the conversation loop.
func (e *Engine) Start(ctx context.Context) { e.scheduler.Start(ctx) }

// Stop deactivates the conversation loop.
func (e *Engine) Stop() { e.scheduler.Stop() }

// Toggle flips the loop between active and inactive.
func (e *Engine) Toggle(ctx context.Context) bool { return e.scheduler.Toggle(ctx) }

// Snapshot returns the observer-facing view of the conversation.
func (e *Engine) Snapshot() scheduler.Snapshot { return e.scheduler.Snapshot() }

// NewModelFromConfig builds the configured model backend. A missing
// credential surfaces as a configuration error before any call is attempted.
func NewModelFromConfig(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.New(cfg.GeminiAPIKey, func(o *gemini.Options) {
			o.Model = cfg.GeminiModel
			if cfg.GeminiBaseURL != "" {
				o.BaseURL = cfg.GeminiBaseURL
			}
		})
	case config.ProviderOpenAI:
		return openaimodel.New(func(o *openaimodel.Options) {
			if cfg.OpenAIModel != "" {
				o.Model = cfg.OpenAIModel
			}
		}), nil
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, &core.ConfigurationError{Reason: "anthropic api key is not set"}
		}
		return anthropicmodel.New(func(o *anthropicmodel.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			if cfg.AnthropicModel != "" {
				o.Model = anthropic.Model(cfg.AnthropicModel)
			}
		}), nil
	default:
		return nil, &core.ConfigurationError{Reason: "unknown provider " + string(cfg.Provider)}
	}
}
