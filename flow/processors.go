package flow

import (
	"fmt"

	"github.com/tripmesh/tripmesh/core"
	internalutil "github.com/tripmesh/tripmesh/internal/util"
	"github.com/tripmesh/tripmesh/model"
)

// InstructionsProcessor handles system prompt and instruction processing.
type InstructionsProcessor struct{}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor { return &InstructionsProcessor{} }

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest adds system instructions to the chat request.
func (p *InstructionsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	instructions, err := agent.ResolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve instruction: %w", err)
	}

	runCtx.LogDebug("agent.instruction.resolved", "agent", agent.GetName(), "length", len(instructions))

	if runCtx.Session != nil && runCtx.Session.State != nil {
		var tplErr error
		// Apply template substitution to system prompt using session state
		req.Instructions, tplErr = internalutil.RenderTemplate(instructions, runCtx.Session.State)
		if tplErr != nil {
			return fmt.Errorf("failed to render template: %w", tplErr)
		}
	} else {
		req.Instructions = instructions
	}

	return nil
}

// ContentsProcessor assembles the conversation contents for the model request.
type ContentsProcessor struct{}

// NewContentsProcessor creates a new contents processor.
func NewContentsProcessor() *ContentsProcessor { return &ContentsProcessor{} }

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest adds the system prompt and trimmed conversation history.
func (p *ContentsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	contents := []core.Content{{
		Role:  "system",
		Parts: []core.Part{core.TextPart{Text: req.Instructions}},
	}}

	if runCtx.Session != nil {
		events := runCtx.Session.GetConversationHistory()
		if max := agent.MaxHistoryMessages(); max > 0 && len(events) > max {
			events = events[len(events)-max:]
		}

		for _, ev := range events {
			if ev.Content != nil && len(ev.Content.Parts) > 0 {
				contents = append(contents, *ev.Content)
			}
		}
	}

	req.Contents = contents
	return nil
}

// ToolsProcessor declares the agent's registered tools on the model request.
type ToolsProcessor struct{}

// NewToolsProcessor creates a new tools processor.
func NewToolsProcessor() *ToolsProcessor { return &ToolsProcessor{} }

// Name returns the processor's identifier.
func (p *ToolsProcessor) Name() string { return "tools" }

// ProcessRequest converts registered tools into model tool definitions.
func (p *ToolsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	if !agent.IsFunctionCallingEnabled() {
		return nil
	}

	for _, t := range agent.GetTools() {
		req.Tools = append(req.Tools, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	return nil
}

// TransferToolInjector exposes the transfer_to_agent tool to agents that can
// hand control to sub-agents. The tool definition lists the reachable agents
// so the model knows the valid targets.
type TransferToolInjector struct{}

// NewTransferToolInjector creates a new transfer tool injector.
func NewTransferToolInjector() *TransferToolInjector { return &TransferToolInjector{} }

// Name returns the processor's identifier.
func (p *TransferToolInjector) Name() string { return "transfer_tool_injector" }

// ProcessRequest appends the transfer_to_agent tool definition when the agent
// allows transfers and has at least one sub-agent. Repeated calls do not
// duplicate the definition.
func (p *TransferToolInjector) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	if !agent.IsTransferEnabled() {
		return nil
	}

	subAgents := agent.GetSubAgents()
	if len(subAgents) == 0 {
		return nil
	}

	for _, td := range req.Tools {
		if td.Function.Name == "transfer_to_agent" {
			return nil
		}
	}

	targets := make([]string, 0, len(subAgents))
	for _, sa := range subAgents {
		targets = append(targets, sa.GetName())
	}

	req.Tools = append(req.Tools, model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "transfer_to_agent",
			Description: "Request transfer of control to another agent by name. Use when another agent is better suited to answer.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"agent": map[string]any{
						"type":        "string",
						"description": "Target agent name",
						"enum":        targets,
					},
				},
				"required": []string{"agent"},
			},
		},
	})

	return nil
}
