// Package anthropic provides a model wrapper for the Anthropic Claude
// Messages API. The flattened dialogue transcript becomes user messages and
// the persona instruction is carried as the system prompt. Search grounding
// is not available on this backend; the retrieval flag is ignored.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/duolog/core"
	"github.com/hupe1980/duolog/model"
)

// Options configure the Anthropic model adapter.
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic model using the official client.
func New(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic model from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate performs one non-streaming Messages API call.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Turns))
	for _, t := range req.Turns {
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
	}

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    messages,
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.Instruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instruction}}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &core.TransportError{StatusCode: apiErr.StatusCode, Err: fmt.Errorf("anthropic api error: %w", err)}
		}
		return nil, &core.TransportError{Err: fmt.Errorf("anthropic api error: %w", err)}
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			if text := block.AsText().Text; text != "" {
				return &model.Response{Text: text}, nil
			}
		}
	}
	return nil, &core.EmptyResponseError{Reason: "no text block in response"}
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: string(m.opts.Model), Provider: "anthropic"}
}

var _ model.Model = (*Model)(nil)
