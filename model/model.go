package model

import (
	"context"
	"fmt"
)

// Turn is one role-tagged line of the wire transcript. The two-party dialogue
// is flattened onto a single "user" role by the invoker; backends forward the
// role verbatim.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request captures the normalized model input produced by the invoker.
type Request struct {
	// Instruction is the persona's behavioral steering text, carried as a
	// system-level field separate from the transcript.
	Instruction string `json:"instruction"`
	// Turns is the bounded wire transcript, oldest first.
	Turns []Turn `json:"turns"`
	// Temperature is the sampling temperature for this call.
	Temperature float64 `json:"temperature"`
	// EnableRetrieval requests the endpoint's search grounding tool.
	// Backends without an equivalent capability ignore it.
	EnableRetrieval bool `json:"enable_retrieval,omitempty"`
}

// Response is the normalized outcome of a single generation call.
type Response struct {
	Text string `json:"text"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "gemini", "openai", "anthropic", "mock"
}

// Model is the minimal interface required to produce one dialogue turn.
// Implementations classify failures using the core error taxonomy so callers
// can decide retryability: *core.TransportError and *core.EmptyResponseError
// are retryable, anything else is not.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Outcomes are scripted per call in order; when the script is exhausted the
// last entry repeats.
type MockModel struct {
	info     Info
	script   []mockOutcome
	calls    int
	Requests []Request // every request seen, in order
}

type mockOutcome struct {
	text string
	err  error
}

// NewMockModel constructs an empty MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock"}}
}

// AddResponse appends a successful canned completion to the script.
func (m *MockModel) AddResponse(text string) *MockModel {
	m.script = append(m.script, mockOutcome{text: text})
	return m
}

// AddError appends a failing outcome to the script.
func (m *MockModel) AddError(err error) *MockModel {
	m.script = append(m.script, mockOutcome{err: err})
	return m
}

// Calls returns how many times Generate was invoked.
func (m *MockModel) Calls() int { return m.calls }

// Generate implements Model by replaying the scripted outcomes.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.calls++
	m.Requests = append(m.Requests, req)
	if len(m.script) == 0 {
		if len(req.Turns) == 0 {
			return nil, fmt.Errorf("no turns provided")
		}
		return &Response{Text: fmt.Sprintf("Mock response to: %s", req.Turns[len(req.Turns)-1].Text)}, nil
	}
	idx := m.calls - 1
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	out := m.script[idx]
	if out.err != nil {
		return nil, out.err
	}
	return &Response{Text: out.text}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

var _ Model = (*MockModel)(nil)
