// Package anthropic adapts the Anthropic Messages API to model.Model.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/model"
)

// Options configure the adapter. APIKey overrides the environment when set.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model drives the Anthropic Messages API behind model.Model.
type Model struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// NewModel builds a Model with its own SDK client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
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

// NewModelFromClient builds a Model around an existing SDK client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: string(m.opts.Model), Provider: "anthropic", SupportsTools: true}
}

// Generate runs a single (non-streamed) message turn. The Messages API keeps
// system prompts and tool results out of the regular message list, so both
// are extracted from the normalized contents before the call.
//
// TODO: streaming via anthropic.MessageStreamEvent, mirroring the openai
// adapter's partial text and tool-use accumulation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if req.Stream {
			errCh <- fmt.Errorf("streaming not yet implemented for Anthropic model")
			return
		}

		params := anthropic.MessageNewParams{
			Model:       m.opts.Model,
			Messages:    toMessages(req.Contents),
			MaxTokens:   m.opts.MaxTokens,
			Temperature: anthropic.Float(m.opts.Temperature),
		}
		if system := systemBlocks(req.Contents); len(system) > 0 {
			params.System = system
		}
		if len(req.Tools) > 0 {
			params.Tools = toTools(req.Tools)
		}

		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		var parts []core.Part
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				if tb := block.AsText(); tb.Text != "" {
					parts = append(parts, core.TextPart{Text: tb.Text})
				}
			case "tool_use":
				tu := block.AsToolUse()
				args := ""
				if tu.Input != nil {
					if raw, err := json.Marshal(tu.Input); err == nil {
						args = string(raw)
					}
				}
				parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
					ID:        tu.ID,
					Name:      tu.Name,
					Arguments: args,
				}})
			}
		}

		finishReason := "stop"
		if resp.StopReason != "" {
			finishReason = string(resp.StopReason)
		}
		out <- model.Response{
			Content:      core.Content{Role: "assistant", Parts: parts},
			FinishReason: finishReason,
		}
	}()

	return out, errCh
}

// toMessages converts normalized contents into the alternating user/assistant
// message list the API expects. Tool results are attached to the assistant
// turn that issued the matching call.
func toMessages(contents []core.Content) []anthropic.MessageParam {
	toolResults := map[string]string{}
	for _, c := range contents {
		if c.Role != "tool" {
			continue
		}
		for _, p := range c.Parts {
			fr, ok := p.(core.FunctionResponsePart)
			if !ok || fr.FunctionResponse.ID == "" {
				continue
			}
			text, ok := fr.FunctionResponse.Response.(string)
			if !ok {
				text = fmt.Sprintf("%v", fr.FunctionResponse.Response)
			}
			toolResults[fr.FunctionResponse.ID] = text
		}
	}

	var messages []anthropic.MessageParam
	for _, c := range contents {
		switch c.Role {
		case "system", "tool":
			// system goes in params.System, tool results are embedded above
		case "assistant":
			if blocks := assistantBlocks(c.Parts, toolResults); len(blocks) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(blocks...))
			}
		default:
			if blocks := textBlocks(c.Parts); len(blocks) > 0 {
				messages = append(messages, anthropic.NewUserMessage(blocks...))
			}
		}
	}
	return messages
}

func systemBlocks(contents []core.Content) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, c := range contents {
		if c.Role != "system" {
			continue
		}
		for _, p := range c.Parts {
			if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
				blocks = append(blocks, anthropic.TextBlockParam{Text: tp.Text})
			}
		}
	}
	return blocks
}

func textBlocks(parts []core.Part) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	for _, p := range parts {
		if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
			blocks = append(blocks, anthropic.NewTextBlock(tp.Text))
		}
	}
	return blocks
}

func assistantBlocks(parts []core.Part, toolResults map[string]string) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	var callIDs []string
	for _, p := range parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case core.FunctionCallPart:
			var input interface{}
			if part.FunctionCall.Arguments != "" {
				if err := json.Unmarshal([]byte(part.FunctionCall.Arguments), &input); err != nil {
					input = part.FunctionCall.Arguments
				}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(
				part.FunctionCall.ID,
				input,
				part.FunctionCall.Name,
			))
			callIDs = append(callIDs, part.FunctionCall.ID)
		}
	}
	for _, id := range callIDs {
		if resp, ok := toolResults[id]; ok {
			blocks = append(blocks, anthropic.NewToolResultBlock(id, resp, false))
			delete(toolResults, id)
		}
	}
	return blocks
}

func toTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if params := tool.Function.Parameters; params != nil {
			if props, ok := params["properties"]; ok {
				schema.Properties = props
			}
			switch req := params["required"].(type) {
			case []string:
				schema.Required = req
			case []interface{}:
				for _, r := range req {
					if s, ok := r.(string); ok {
						schema.Required = append(schema.Required, s)
					}
				}
			}
		}
		out[i] = anthropic.ToolUnionParamOfTool(schema, tool.Function.Name)
	}
	return out
}
