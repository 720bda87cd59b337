// Package gemini implements model.Model against the Gemini generateContent
// REST API. It adapts duolog's normalized Request into the endpoint's wire
// shape (contents, systemInstruction, generationConfig, optional grounding
// tool) and classifies failures via the core error taxonomy so the invoker
// can retry transport-level and structurally-empty outcomes alike.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hupe1980/duolog/core"
	"github.com/hupe1980/duolog/model"
)

// DefaultBaseURL is the public Gemini API host.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Options configure the Gemini model adapter.
type Options struct {
	Model   string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client (useful for tests).
	HTTPClient *http.Client
}

// Model wraps the Gemini generateContent endpoint behind the generic
// model.Model interface.
type Model struct {
	apiKey string
	opts   Options
	client *http.Client
}

// New creates a Gemini model. The API key is required; it is treated as an
// opaque credential and never logged.
func New(apiKey string, optFns ...func(o *Options)) (*Model, error) {
	if apiKey == "" {
		return nil, &core.ConfigurationError{Reason: "gemini api key is not set"}
	}
	opts := Options{
		Model:   "gemini-2.0-flash",
		BaseURL: DefaultBaseURL,
		Timeout: 60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Model{apiKey: apiKey, opts: opts, client: client}, nil
}

// Wire structures for the generateContent request/response.

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate performs one non-streaming generateContent call.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	body := geminiRequest{
		Contents:         make([]geminiContent, 0, len(req.Turns)),
		GenerationConfig: &geminiGenerationConfig{Temperature: req.Temperature},
	}
	for _, t := range req.Turns {
		body.Contents = append(body.Contents, geminiContent{
			Role:  t.Role,
			Parts: []geminiPart{{Text: t.Text}},
		})
	}
	if req.Instruction != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.Instruction}}}
	}
	if req.EnableRetrieval {
		body.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(m.opts.BaseURL, "/"), m.opts.Model, url.QueryEscape(m.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, &core.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("gemini: %s", readErrMsg(resp.Body))}
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &core.EmptyResponseError{Reason: fmt.Sprintf("malformed body: %v", err)}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, &core.EmptyResponseError{Reason: "no candidate content parts"}
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return nil, &core.EmptyResponseError{Reason: "candidate text is empty"}
	}
	return &model.Response{Text: text}, nil
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}

// readErrMsg extracts the error message from a Gemini error body, falling
// back to the raw text when it is not the documented error shape.
func readErrMsg(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no error detail"
	}
	var parsed geminiErrorResp
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(raw)
}

var _ model.Model = (*Model)(nil)
