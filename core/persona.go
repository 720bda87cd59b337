package core

import "fmt"

// Persona is a fixed identity playing one side of the dialogue. Values are
// immutable after registration.
type Persona struct {
	// ID is the unique short name, also used to attribute transcript entries
	// and to detect a model echoing its own signature.
	ID string `json:"id"`

	// StyleTag is an opaque presentation hint forwarded to observers. The
	// engine never interprets it.
	StyleTag string `json:"style_tag"`

	// Instruction is the behavioral system instruction sent with every
	// generation request made on behalf of this persona.
	Instruction string `json:"instruction"`

	// UsesRetrieval requests the endpoint's search grounding augmentation
	// for this persona's turns.
	UsesRetrieval bool `json:"uses_retrieval"`
}

// Registry holds the fixed persona set for one conversation. The engine
// supports exactly two participants; NewRegistry rejects anything else.
// A Registry is immutable after construction and safe for concurrent reads.
type Registry struct {
	personas []Persona
	byID     map[string]Persona
}

// NewRegistry validates and freezes the persona set. Exactly two personas
// with distinct non-empty ids are required.
func NewRegistry(personas ...Persona) (*Registry, error) {
	if len(personas) != 2 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("expected exactly 2 personas, got %d", len(personas))}
	}
	byID := make(map[string]Persona, len(personas))
	for _, p := range personas {
		if p.ID == "" {
			return nil, &ConfigurationError{Reason: "persona id must not be empty"}
		}
		if _, dup := byID[p.ID]; dup {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate persona id %q", p.ID)}
		}
		byID[p.ID] = p
	}
	return &Registry{personas: append([]Persona(nil), personas...), byID: byID}, nil
}

// Personas returns the registered personas in registration order.
func (r *Registry) Personas() []Persona {
	out := make([]Persona, len(r.personas))
	copy(out, r.personas)
	return out
}

// Get returns the persona with the given id.
func (r *Registry) Get(id string) (Persona, error) {
	p, ok := r.byID[id]
	if !ok {
		return Persona{}, &ConfigurationError{Reason: fmt.Sprintf("unknown persona %q", id)}
	}
	return p, nil
}

// Starter returns the persona that opens an empty conversation: the first
// one registered.
func (r *Registry) Starter() Persona { return r.personas[0] }

// OpponentOf returns the other registered persona. Pure; an unknown id is a
// configuration-level failure.
func (r *Registry) OpponentOf(id string) (Persona, error) {
	if _, ok := r.byID[id]; !ok {
		return Persona{}, &ConfigurationError{Reason: fmt.Sprintf("unknown persona %q", id)}
	}
	for _, p := range r.personas {
		if p.ID != id {
			return p, nil
		}
	}
	// Unreachable while the two-persona invariant holds.
	return Persona{}, &ConfigurationError{Reason: fmt.Sprintf("no opponent registered for %q", id)}
}
