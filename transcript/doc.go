// Package transcript houses concrete implementations of the
// core.TranscriptStore. The interface itself (and the Transcript struct)
// live in the core package to centralize domain contracts. Keeping only
// implementations here prevents higher level packages (scheduler, server)
// from depending on concrete storage.
package transcript
