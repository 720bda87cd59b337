package core

import "fmt"

// ConfigurationError reports invalid persona setup or a missing credential.
// It is fatal and never retried.
type ConfigurationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// TransportError reports a failed network exchange: a non-2xx HTTP status or
// a connection-level failure. Eligible for retry.
type TransportError struct {
	StatusCode int // 0 when the request never produced a response
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Err }

// EmptyResponseError reports a well-formed HTTP response lacking the expected
// candidate text. Indistinguishable from a transport failure for retry
// purposes.
type EmptyResponseError struct {
	Reason string
}

// Error implements the error interface.
func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("empty response: %s", e.Reason)
}

// InvocationError reports that every attempt of a turn's model call failed.
// It carries the persona on whose behalf the call was made and the last
// underlying failure. Terminal for that turn.
type InvocationError struct {
	PersonaID string
	Err       error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation failed for persona %q: %v", e.PersonaID, e.Err)
}

// Unwrap returns the last underlying failure.
func (e *InvocationError) Unwrap() error { return e.Err }
