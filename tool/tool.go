// Package tool implements function calling: agents expose structured
// capabilities (API calls, computations, side effects) with schema-validated
// arguments and uniform error handling.
package tool

import (
	"fmt"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/internal/util"
)

// Tool is a capability an agent can offer to its model for function
// calling. The name and description are shown to the LLM so it can decide
// when to invoke the tool; Parameters describes the accepted arguments as a
// JSON schema. Call receives decoded arguments plus a ToolContext giving
// access to session state, flow-control actions, memory and artifacts.
//
// Implementations should use snake_case names, keep descriptions concrete,
// and be safe for concurrent use.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Call(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error)
}

// ValidationError reports a parameter validation failure.
type ValidationError = util.ValidationError

// ToolError is the uniform error shape for tool execution failures.
type ToolError struct {
	Tool    string      `json:"tool"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError builds a ToolError with the given code.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
