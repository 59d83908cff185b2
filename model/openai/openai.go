// Package openai adapts the OpenAI Chat Completions API (streaming and
// function calling included) to the model.Model interface.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/model"
)

// Options configure the adapter. A deliberately small subset of the Chat
// Completions parameters; extend through functional options.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model drives the OpenAI Chat Completions API behind model.Model.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel builds a Model with a default client (API key from environment).
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient builds a Model around an existing SDK client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai", SupportsTools: true}
}

// Generate converts the normalized request into chat messages, runs the
// completion (streamed or not) and forwards results as model.Response values.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		params := m.newParams(req)
		if req.Stream {
			m.streamCompletion(ctx, params, out, errCh)
		} else {
			m.completeOnce(ctx, params, out, errCh)
		}
	}()
	return out, errCh
}

// newParams assembles the Chat Completions parameters, including message
// history and tool definitions.
func (m *Model) newParams(req model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            toChatMessages(req),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, tdef := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        tdef.Function.Name,
					Description: openai.String(tdef.Function.Description),
					Parameters:  tdef.Function.Parameters,
				},
			}
		}
		params.Tools = tools
	}
	return params
}

// toChatMessages maps normalized contents onto the OpenAI message union.
// Tool results are indexed by call ID and inserted directly after the
// assistant message that issued the call, which is what the API requires;
// any results whose call we never saw are appended at the end in first-seen
// order.
func toChatMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	results, order := indexToolResults(req)

	var messages []openai.ChatCompletionMessageParamUnion
	for _, c := range req.Contents {
		if c.Role == "tool" {
			continue
		}
		text := textOf(c)
		switch c.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		case "user":
			messages = append(messages, openai.UserMessage(text))
		case "assistant":
			calls, callIDs := assistantToolCalls(c)
			if len(calls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: calls,
				},
			})
			for _, id := range callIDs {
				if id == "" {
					continue
				}
				if resp, ok := results[id]; ok {
					messages = append(messages, openai.ToolMessage(resp, id))
					delete(results, id)
				}
			}
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	for _, id := range order {
		if resp, ok := results[id]; ok {
			messages = append(messages, openai.ToolMessage(resp, id))
		}
	}
	return messages
}

func textOf(c core.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

func indexToolResults(req model.Request) (map[string]string, []string) {
	results := map[string]string{}
	order := []string{}
	for _, c := range req.Contents {
		if c.Role != "tool" {
			continue
		}
		for _, p := range c.Parts {
			fr, ok := p.(core.FunctionResponsePart)
			if !ok || fr.FunctionResponse.ID == "" {
				continue
			}
			if _, seen := results[fr.FunctionResponse.ID]; seen {
				continue
			}
			text, ok := fr.FunctionResponse.Response.(string)
			if !ok {
				text = fmt.Sprintf("%v", fr.FunctionResponse.Response)
			}
			results[fr.FunctionResponse.ID] = text
			order = append(order, fr.FunctionResponse.ID)
		}
	}
	return results, order
}

func assistantToolCalls(c core.Content) ([]openai.ChatCompletionMessageToolCallParam, []string) {
	var calls []openai.ChatCompletionMessageToolCallParam
	var ids []string
	for _, p := range c.Parts {
		fc, ok := p.(core.FunctionCallPart)
		if !ok {
			continue
		}
		calls = append(calls, openai.ChatCompletionMessageToolCallParam{
			ID:   fc.FunctionCall.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.FunctionCall.Name,
				Arguments: fc.FunctionCall.Arguments,
			},
		})
		ids = append(ids, fc.FunctionCall.ID)
	}
	return calls, ids
}

// partialCall accumulates streamed tool call deltas keyed by choice index so
// the complete call can be reconstructed at finish.
type partialCall struct{ id, name, args string }

func (p *partialCall) asPart() core.Part {
	return core.FunctionCallPart{FunctionCall: core.FunctionCall{
		ID:        p.id,
		Name:      p.name,
		Arguments: p.args,
	}}
}

// streamCompletion forwards text and tool call deltas as partial responses,
// then emits a final response carrying the assembled content.
func (m *Model) streamCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	var text strings.Builder
	calls := map[int64]*partialCall{}

	for stream.Next() {
		chunk := stream.Current()
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				text.WriteString(choice.Delta.Content)
				out <- model.Response{
					Partial: true,
					Content: core.Content{
						Role:  "assistant",
						Parts: []core.Part{core.TextPart{Text: choice.Delta.Content}},
					},
				}
			}
			for _, tc := range choice.Delta.ToolCalls {
				pc, ok := calls[tc.Index]
				if !ok {
					pc = &partialCall{}
					calls[tc.Index] = pc
				}
				if tc.ID != "" {
					pc.id = tc.ID
				}
				if tc.Function.Name != "" {
					pc.name = tc.Function.Name
				}
				pc.args += tc.Function.Arguments
				out <- model.Response{
					Partial: true,
					Content: core.Content{Role: "assistant", Parts: []core.Part{pc.asPart()}},
				}
			}
			if choice.FinishReason == "" {
				continue
			}
			parts := make([]core.Part, 0, len(calls)+1)
			if text.Len() > 0 {
				parts = append(parts, core.TextPart{Text: text.String()})
			}
			for _, pc := range calls {
				parts = append(parts, pc.asPart())
			}
			out <- model.Response{
				Content:      core.Content{Role: "assistant", Parts: parts},
				FinishReason: choice.FinishReason,
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
	}
}

func (m *Model) completeOnce(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("no choices returned")
		return
	}
	choice := resp.Choices[0]
	parts := make([]core.Part, 0, len(choice.Message.ToolCalls)+1)
	if choice.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	out <- model.Response{
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: choice.FinishReason,
	}
}
