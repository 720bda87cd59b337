// Package config loads runtime configuration from the process environment.
// Credentials are opaque strings supplied externally; validation happens when
// the selected model backend is constructed so misconfiguration fails fast,
// before any call is attempted.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Provider selects the generation backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config is the full runtime configuration.
type Config struct {
	// Backend selection
	Provider Provider `env:"DUOLOG_PROVIDER" envDefault:"gemini"`

	// Gemini settings
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	// OpenAI settings (credentials are read by the SDK itself)
	OpenAIModel string `env:"OPENAI_MODEL"`

	// Anthropic settings
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL"`

	// HTTP observation surface
	ListenAddr string `env:"DUOLOG_ADDR" envDefault:":8080"`

	// AutoStart activates the conversation loop immediately at boot instead
	// of waiting for the first toggle.
	AutoStart bool `env:"DUOLOG_AUTOSTART" envDefault:"false"`

	// MaxTurns caps turns per activation; zero means unlimited.
	MaxTurns int `env:"DUOLOG_MAX_TURNS" envDefault:"0"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	switch cfg.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	return cfg, nil
}
