package flow

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/tool"
)

// FunctionExecutor runs a batch of tool calls and emits one FunctionResponse
// event per call through the emit callback. Implementations must respect
// runCtx.Context cancellation, recover panics instead of crashing the flow,
// and apply the accumulated ToolContext actions to each emitted event.
// Resume synchronization is the emit callback's responsibility.
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, agent FlowAgent, toolRegistry map[string]tool.Tool, fnCalls []core.FunctionCall, emit func(core.Event) error)
}

// FunctionExecutorConfig tunes the default parallel executor.
type FunctionExecutorConfig struct {
	MaxParallel    int  // <1 means unbounded (one goroutine per call)
	PreserveOrder  bool // buffer results and emit in request order
	LogStartEvents bool // log a line when each function starts
}

// NewParallelFunctionExecutor returns the default executor.
func NewParallelFunctionExecutor(cfg FunctionExecutorConfig) FunctionExecutor {
	return &parallelFunctionExecutor{cfg: cfg}
}

type parallelFunctionExecutor struct {
	cfg FunctionExecutorConfig
}

func (e *parallelFunctionExecutor) Execute(
	runCtx *core.RunContext,
	agent FlowAgent,
	toolRegistry map[string]tool.Tool,
	fnCalls []core.FunctionCall,
	emit func(core.Event) error,
) {
	n := len(fnCalls)
	switch n {
	case 0:
		return
	case 1:
		// Single call executes inline, no goroutine overhead.
		ev := e.runCall(runCtx, agent, toolRegistry, fnCalls[0])
		_ = emit(ev)
		return
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	ordered := make([]core.Event, n) // filled only when PreserveOrder
	var emitMu sync.Mutex            // serializes unordered emits
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range fnCalls {
		if runCtx.Context.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, fc core.FunctionCall) {
			defer wg.Done()
			defer func() { <-sem }()
			if runCtx.Context.Err() != nil {
				return
			}
			ev := e.runCall(runCtx, agent, toolRegistry, fc)
			if e.cfg.PreserveOrder {
				ordered[idx] = ev
				return
			}
			emitMu.Lock()
			err := emit(ev)
			emitMu.Unlock()
			if err != nil {
				runCtx.LogError("agent.function.emit.error", "function", fc.Name, "error", err.Error())
			}
		}(i, fnCalls[i])
	}
	wg.Wait()

	if e.cfg.PreserveOrder {
		for i, ev := range ordered {
			if ev.ID == "" {
				continue // call skipped due to cancellation
			}
			if err := emit(ev); err != nil {
				runCtx.LogError("agent.function.emit.error", "function", fnCalls[i].Name, "error", err.Error())
			}
		}
	}

	runCtx.LogDebug(
		"agent.functions.batch.complete",
		"agent", agent.GetName(),
		"count", n,
		"parallelism", maxPar,
		"preserve_order", e.cfg.PreserveOrder,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
}

// runCall executes one tool call with panic recovery and returns the
// response event with the tool's actions already applied.
func (e *parallelFunctionExecutor) runCall(
	runCtx *core.RunContext,
	agent FlowAgent,
	toolRegistry map[string]tool.Tool,
	fc core.FunctionCall,
) core.Event {
	toolCtx := core.NewToolContext(runCtx, fc.ID)
	if e.cfg.LogStartEvents {
		runCtx.LogInfo("agent.function.start", "agent", agent.GetName(), "function", fc.Name, "function_call_id", fc.ID)
	}

	start := time.Now()
	var (
		result any
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &panicErr{val: r, stack: debug.Stack()}
				runCtx.LogError("agent.function.panic", "agent", agent.GetName(), "function", fc.Name, "recover", r)
			}
		}()
		result, err = executeTool(toolRegistry, toolCtx, fc.Name, fc.Arguments)
	}()

	runCtx.LogInfo(
		"agent.function.executed",
		"agent", agent.GetName(),
		"function", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	ev := core.NewFunctionResponseEvent(agent.GetName(), fc.ID, fc.Name, result, err)
	toolCtx.InternalApplyActions(&ev)
	return ev
}

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return "panic recovered" }

// executeTool looks up the tool by name, decodes the JSON arguments and
// invokes it.
func executeTool(toolRegistry map[string]tool.Tool, toolCtx *core.ToolContext, toolName, args string) (any, error) {
	impl, ok := toolRegistry[toolName]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", toolName)
	}
	argMap := map[string]any{}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argMap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}
	}
	return impl.Call(toolCtx, argMap)
}
