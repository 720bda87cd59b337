// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. It adapts duolog's normalized Request into the SDK's
// message format: the flattened dialogue transcript becomes user messages and
// the persona instruction becomes the system message. Search grounding is not
// available on this backend; the retrieval flag is ignored.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/duolog/core"
	"github.com/hupe1980/duolog/model"
)

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI model using the official client (credentials come
// from the environment handled by the SDK).
func New(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI model from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate performs one non-streaming chat completion.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns)+1)
	if req.Instruction != "" {
		messages = append(messages, openai.SystemMessage(req.Instruction))
	}
	for _, t := range req.Turns {
		messages = append(messages, openai.UserMessage(t.Text))
	}

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &core.TransportError{StatusCode: apiErr.StatusCode, Err: fmt.Errorf("openai api error: %w", err)}
		}
		return nil, &core.TransportError{Err: fmt.Errorf("openai api error: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &core.EmptyResponseError{Reason: "no choices returned"}
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return nil, &core.EmptyResponseError{Reason: "choice content is empty"}
	}
	return &model.Response{Text: text}, nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}

var _ model.Model = (*Model)(nil)
