// Package flow drives the agent execution pipeline: building model requests
// from session history, streaming responses, executing tool calls and
// handling transfers between agents. Agents stay declarative; flows do the
// work.
package flow

import (
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/model"
	"github.com/tripmesh/tripmesh/tool"
)

// Flow runs one agent turn end to end and streams the resulting events.
// Implementations range from a single model round-trip to multi-step loops
// with tool execution and sub-agent transfer.
type Flow interface {
	Execute(runCtx *core.RunContext) (<-chan core.Event, error)
}

// FlowAgent is the view of an agent that flows operate on. It exposes the
// model, instructions, tools and policy switches without leaking the full
// agent implementation.
type FlowAgent interface {
	GetName() string
	GetLLM() model.Model
	ResolveInstructions(runCtx *core.RunContext) (string, error)
	GetTools() map[string]tool.Tool
	GetSubAgents() []FlowAgent

	IsFunctionCallingEnabled() bool
	IsStreamingEnabled() bool
	IsTransferEnabled() bool

	// GetOutputKey names the session state key the final response is saved
	// under, or "" to skip saving.
	GetOutputKey() string

	// MaxHistoryMessages bounds how much conversation history goes into the
	// model request. Zero means unlimited.
	MaxHistoryMessages() int

	ExecuteTool(toolCtx *core.ToolContext, toolName string, args string) (interface{}, error)
	TransferToAgent(runCtx *core.RunContext, agentName string) error
}

// RequestProcessor mutates the model request before it is sent.
type RequestProcessor interface {
	Name() string
	ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error
}

// ResponseProcessor inspects or augments each model response after receipt.
type ResponseProcessor interface {
	Name() string
	ProcessResponse(runCtx *core.RunContext, resp *model.Response, agent FlowAgent) error
}
