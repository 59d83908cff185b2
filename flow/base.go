package flow

import (
	"fmt"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/model"
)

// BaseFlow implements the request -> model -> tool loop cycle shared by all
// flows. Request and response processors are pluggable; registration order
// is execution order.
type BaseFlow struct {
	agent              FlowAgent
	requestProcessors  []RequestProcessor
	responseProcessors []ResponseProcessor
	executor           FunctionExecutor
}

// NewBaseFlow builds a flow around one agent with an ordered tool executor
// and no processors registered.
func NewBaseFlow(agent FlowAgent) *BaseFlow {
	return &BaseFlow{
		agent:              agent,
		requestProcessors:  []RequestProcessor{},
		responseProcessors: []ResponseProcessor{},
		executor:           NewParallelFunctionExecutor(FunctionExecutorConfig{PreserveOrder: true}),
	}
}

// AddRequestProcessor registers a processor run before each model call.
func (f *BaseFlow) AddRequestProcessor(p RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, p)
}

// AddResponseProcessor registers a processor run on each model chunk.
func (f *BaseFlow) AddResponseProcessor(p ResponseProcessor) {
	f.responseProcessors = append(f.responseProcessors, p)
}

// Execute runs model turns until a final response, a transfer or an error,
// streaming events on the returned channel. The channel closes when the
// flow is done; callers should range over it.
func (f *BaseFlow) Execute(runCtx *core.RunContext) (<-chan core.Event, error) {
	events := make(chan core.Event, 100)

	go func() {
		defer close(events)

		for {
			last, transfer := f.modelTurn(runCtx, events)
			if last == nil {
				return
			}
			if transfer != "" {
				// Control moves to another agent; its events share this run
				// context, so this flow is done.
				if err := f.agent.TransferToAgent(runCtx, transfer); err != nil {
					f.fail(events, fmt.Errorf("transfer to %s failed: %w", transfer, err))
				}
				return
			}
			if len(last.GetFunctionResponses()) > 0 {
				// Tool results just landed; run another turn so the model can
				// use them.
				continue
			}
			if last.IsPartial() {
				runCtx.LogWarn("flow.unexpected_partial_tail", "agent", f.agent.GetName())
				return
			}
			if last.IsFinalResponse() {
				return
			}
		}
	}()

	return events, nil
}

func (f *BaseFlow) fail(events chan<- core.Event, err error) {
	ev := core.NewEvent("", "system")
	msg := err.Error()
	ev.ErrorMessage = &msg
	events <- ev
}

// send delivers an event and, for non-partial events, blocks until the
// runner confirms persistence via the resume channel.
func (f *BaseFlow) send(runCtx *core.RunContext, events chan<- core.Event, ev core.Event) error {
	select {
	case <-runCtx.Context.Done():
		return runCtx.Context.Err()
	case events <- ev:
	}
	if ev.IsPartial() || runCtx.Resume == nil {
		return nil
	}
	select {
	case <-runCtx.Context.Done():
		return runCtx.Context.Err()
	case <-runCtx.Resume:
		return nil
	}
}

// modelTurn performs one model call, executes any requested tools and
// returns the last event it emitted plus a pending transfer target. A nil
// event means the flow should stop.
func (f *BaseFlow) modelTurn(runCtx *core.RunContext, events chan<- core.Event) (*core.Event, string) {
	// Re-read the session so request processors see events the runner
	// appended since the previous turn, tool responses included.
	if runCtx.SessionStore != nil {
		if latest, err := runCtx.SessionStore.Get(runCtx.SessionID); err == nil && latest != nil {
			runCtx.Session = latest
		}
	}

	req := &model.Request{Stream: f.agent.IsStreamingEnabled()}
	for _, p := range f.requestProcessors {
		if err := p.ProcessRequest(runCtx, req, f.agent); err != nil {
			f.fail(events, fmt.Errorf("request processor %s failed: %w", p.Name(), err))
			return nil, ""
		}
	}

	if runCtx.Limiter != nil {
		if err := runCtx.Limiter.Increment(); err != nil {
			f.fail(events, err)
			return nil, ""
		}
	}

	respCh, errCh := f.agent.GetLLM().Generate(runCtx.Context, *req)

	var (
		lastEvent *core.Event
		transfer  string
	)
	for {
		select {
		case resp, ok := <-respCh:
			if !ok {
				// The adapter may have buffered an error behind the last
				// response; surface it instead of silently finishing.
				if errCh != nil {
					select {
					case err, pending := <-errCh:
						if pending && err != nil {
							f.fail(events, fmt.Errorf("model generation failed: %w", err))
							return nil, ""
						}
					default:
					}
				}
				return lastEvent, transfer
			}
			for _, p := range f.responseProcessors {
				if err := p.ProcessResponse(runCtx, &resp, f.agent); err != nil {
					f.fail(events, fmt.Errorf("response processor %s failed: %w", p.Name(), err))
					return nil, ""
				}
			}

			ev := core.NewEvent(runCtx.RunID, f.agent.GetName())
			ev.Content = &resp.Content
			ev.Partial = &resp.Partial
			if !resp.Partial && len(ev.GetFunctionCalls()) == 0 {
				complete := true
				ev.TurnComplete = &complete
			}
			lastEvent = &ev

			if err := f.send(runCtx, events, ev); err != nil {
				return lastEvent, transfer
			}

			if fnCalls := ev.GetFunctionCalls(); len(fnCalls) > 0 {
				f.executor.Execute(runCtx, f.agent, f.agent.GetTools(), fnCalls, func(respEv core.Event) error {
					if respEv.Actions.TransferToAgent != nil && *respEv.Actions.TransferToAgent != "" {
						transfer = *respEv.Actions.TransferToAgent
					}
					lastEvent = &respEv
					return f.send(runCtx, events, respEv)
				})
			}
		case err, ok := <-errCh:
			if !ok {
				// Adapters close both channels together; responses may still
				// be buffered on respCh, so keep draining it.
				errCh = nil
				continue
			}
			if err != nil {
				f.fail(events, fmt.Errorf("model generation failed: %w", err))
				return nil, ""
			}
		}
	}
}
