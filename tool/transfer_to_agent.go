package tool

import (
	"fmt"

	"github.com/tripmesh/tripmesh/core"
)

// transferToAgentTool lets a model hand the conversation to a named
// sub-agent. The actual transfer happens in the flow layer; the tool only
// records the request on the ToolContext actions.
type transferToAgentTool struct{}

// NewTransferToAgentTool returns the built-in agent transfer tool.
func NewTransferToAgentTool() Tool { return &transferToAgentTool{} }

func (t *transferToAgentTool) Name() string { return "transfer_to_agent" }

func (t *transferToAgentTool) Description() string {
	return "Request transfer of control to another sub-agent by name. Use when another agent is better suited."
}

func (t *transferToAgentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent": map[string]any{"type": "string", "description": "Target agent name"},
		},
		"required": []string{"agent"},
	}
}

func (t *transferToAgentTool) Call(tc *core.ToolContext, args map[string]any) (any, error) {
	name, ok := args["agent"].(string)
	if !ok || name == "" {
		if _, present := args["agent"]; !present {
			return nil, fmt.Errorf("missing required field 'agent'")
		}
		return nil, fmt.Errorf("field 'agent' must be non-empty string")
	}
	tc.TransferToAgent(name)
	return map[string]any{"transferred": true, "agent": name}, nil
}
