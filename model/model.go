package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tripmesh/tripmesh/core"
)

// Model is what flows and agents need from a language model backend:
// streamed generation and a little metadata. Provider packages (openai,
// anthropic) adapt vendor SDKs to this interface.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)
	Info() Info
}

// Info describes a model backend.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "local", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Request is the normalized input a flow hands to a backend. Contents are
// converted to provider message formats by each implementation.
type Request struct {
	Instructions string           `json:"instructions"`
	Contents     []core.Content   `json:"contents"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// Response is one chunk of model output. Partial chunks carry incremental
// text; the final chunk carries the full content, finish reason and usage.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// TokenUsage reports token counts for a completed generation.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolDefinition exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition names a single function and its JSON Schema parameters.
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolCall is a function call request surfaced by a backend, normalized so
// downstream logic needs no per-vendor branching.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"` // "function"
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction is the concrete target of a tool call.
type ToolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"` // JSON-encoded argument object
}

// MockModel is an in-memory Model for tests and examples. Register canned
// completions with AddResponse; unknown prompts get an echo reply.
type MockModel struct {
	info      Info
	responses map[string]string
}

// NewMockModel builds a MockModel that reports tool support.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider, SupportsTools: true},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

func (m *MockModel) Info() Info { return m.info }

// Generate emits per-rune partial chunks when streaming is requested,
// followed by a single final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}
		var prompt string
		for _, p := range req.Contents[len(req.Contents)-1].Parts {
			if tp, ok := p.(core.TextPart); ok {
				prompt += tp.Text
			}
		}
		reply := m.responses[prompt]
		if reply == "" {
			reply = fmt.Sprintf("Mock response to: %s", prompt)
		}

		if req.Stream {
			for _, r := range reply {
				chunk := Response{
					Partial: true,
					Content: core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: string(r)}}},
				}
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- chunk:
				}
			}
		}
		respCh <- Response{
			Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: reply}}},
			FinishReason: "stop",
		}
	}()
	return respCh, errCh
}
