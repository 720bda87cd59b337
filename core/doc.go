// Package core provides the foundational domain types used by duolog. It
// defines the core abstractions for:
//
//   - Personas (the two fixed identities playing the dialogue)
//   - Messages (immutable produced utterances)
//   - Transcripts (ordered append-only conversation logs)
//   - Engine state (idle / thinking / stopped)
//   - The error taxonomy shared by the invoker and scheduler
//
// The package intentionally keeps implementation concerns (model backends,
// scheduling, the observation surface) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
