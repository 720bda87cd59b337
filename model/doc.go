// Package model defines the generation backend abstraction used by the
// invoker. Concrete adapters live in sub-packages (gemini, openai,
// anthropic); the factory in this package selects one from configuration.
// Backends are single-shot: one request, one normalized text response, with
// failures classified via the core error taxonomy so the invoker's retry
// policy stays backend-agnostic.
package model
