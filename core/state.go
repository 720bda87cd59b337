package core

// State is the engine phase of one conversation. At most one Thinking phase
// is in flight at any time; StateStopped is terminal until an external
// restart returns the engine to StateIdle.
type State int

const (
	// StateIdle means no turn is in flight.
	StateIdle State = iota
	// StateThinking means a turn is in flight (a model call may be pending).
	StateThinking
	// StateStopped means the loop halted on an invocation failure and
	// requires an external restart.
	StateStopped
)

// String returns the observer-facing name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateThinking:
		return "thinking"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
