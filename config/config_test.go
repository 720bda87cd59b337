package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.False(t, cfg.AutoStart)
	assert.Zero(t, cfg.MaxTurns)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DUOLOG_PROVIDER", "openai")
	t.Setenv("DUOLOG_ADDR", ":9999")
	t.Setenv("DUOLOG_AUTOSTART", "true")
	t.Setenv("DUOLOG_MAX_TURNS", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.True(t, cfg.AutoStart)
	assert.Equal(t, 12, cfg.MaxTurns)
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("DUOLOG_PROVIDER", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}
