package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/logging"
)

func newSequentialRunContext(agentName string) *core.RunContext {
	sess := core.NewSession("sess-briefing")
	return core.NewRunContext(
		context.Background(), "sess-briefing", "run-briefing",
		core.AgentInfo{Name: agentName, Type: "sequential"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "Plan a week in Lisbon"}}},
		make(chan core.Event, 10), make(chan struct{}, 1), sess,
		nil, nil, nil, logging.NoOpLogger{},
	)
}

func TestNewSequentialAgent(t *testing.T) {
	outline := NewMockAgent("Outline")
	polish := NewMockAgent("Polish")

	pipeline, err := NewSequentialAgent("Briefing", outline, polish)
	require.NoError(t, err)

	assert.NotNil(t, pipeline)
	assert.Equal(t, "Briefing", pipeline.Name())
	assert.Len(t, pipeline.children, 2)
	assert.Equal(t, outline, pipeline.children[0])
	assert.Equal(t, polish, pipeline.children[1])
}

func TestSequentialAgent_RunsChildrenInOrder(t *testing.T) {
	outline := NewMockAgent("Outline")
	expand := NewMockAgent("Expand")
	polish := NewMockAgent("Polish")
	pipeline, err := NewSequentialAgent("Briefing", outline, expand, polish)
	require.NoError(t, err)

	runCtx := newSequentialRunContext("Briefing")
	outline.On("Run", runCtx).Return(nil)
	expand.On("Run", runCtx).Return(nil)
	polish.On("Run", runCtx).Return(nil)

	assert.NoError(t, pipeline.Run(runCtx))
	outline.AssertExpectations(t)
	expand.AssertExpectations(t)
	polish.AssertExpectations(t)
}

func TestSequentialAgent_StopsOnFirstError(t *testing.T) {
	outline := NewMockAgent("Outline")
	polish := NewMockAgent("Polish")
	pipeline, err := NewSequentialAgent("Briefing", outline, polish)
	require.NoError(t, err)

	runCtx := newSequentialRunContext("Briefing")
	outline.On("Run", runCtx).Return(assert.AnError)

	err = pipeline.Run(runCtx)
	assert.ErrorIs(t, err, assert.AnError)
	outline.AssertExpectations(t)
	polish.AssertNotCalled(t, "Run")
}

func TestSequentialAgent_NoChildren(t *testing.T) {
	pipeline, err := NewSequentialAgent("Briefing")
	require.NoError(t, err)
	assert.NoError(t, pipeline.Run(newSequentialRunContext("Briefing")))
}

func TestSequentialAgent_SharesRunContext(t *testing.T) {
	outline := NewMockAgent("Outline")
	polish := NewMockAgent("Polish")
	pipeline, err := NewSequentialAgent("Briefing", outline, polish)
	require.NoError(t, err)

	runCtx := newSequentialRunContext("Briefing")
	sameCtx := mock.MatchedBy(func(got *core.RunContext) bool { return got == runCtx })
	outline.On("Run", sameCtx).Return(nil)
	polish.On("Run", sameCtx).Return(nil)

	assert.NoError(t, pipeline.Run(runCtx))
	outline.AssertExpectations(t)
	polish.AssertExpectations(t)
}

func TestNewSequentialAgent_DuplicateStageNames(t *testing.T) {
	first := NewMockAgent("Outline")
	second := NewMockAgent("Outline")

	pipeline, err := NewSequentialAgent("Briefing", first, second)
	require.Error(t, err)
	assert.Nil(t, pipeline)
	assert.Contains(t, err.Error(), "duplicate pipeline stage Outline")
}
