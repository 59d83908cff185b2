package tool

import (
	"fmt"
	"time"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/internal/util"
)

// FunctionTool exposes a plain Go function as a Tool. It validates model
// supplied arguments against a JSON-Schema-like parameter map before
// invoking the function, and normalizes failures into *ToolError:
// VALIDATION_ERROR for schema mismatches, EXECUTION_ERROR for function
// errors, with *ToolError return values passed through untouched.
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use. The returned result can be any JSON-serializable value;
// implement Tool directly when more structure is needed.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// implementation.
//
// Example:
//
//	weather := NewFunctionTool(
//	  "get_weather",
//	  "Look up the current weather for a city",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "city": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"city"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return lookupWeather(args["city"].(string))
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct via
// reflection (util.CreateSchema), for simple argument containers.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the tool name used in function declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description shown to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the argument schema.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the schema and invokes the wrapped function.
// Failures come back as *ToolError with a stable code (see type doc).
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
			Details: err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)
			return nil, toolErr
		}
		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
