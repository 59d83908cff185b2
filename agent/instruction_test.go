package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/logging"
)

type stubProvider struct {
	text string
	err  error
}

func (p stubProvider) Instruction(*core.RunContext) (string, error) { return p.text, p.err }

func newTestRunContext() *core.RunContext {
	sess := core.NewSession("sess-inst")
	return core.NewRunContext(
		context.Background(), sess.ID, "run-inst",
		core.AgentInfo{Name: "Concierge", Type: "test"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "hello"}}},
		make(chan core.Event, 1), nil, sess,
		nil, nil, nil, logging.NoOpLogger{},
	)
}

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("You are a travel concierge.")

	assert.True(t, inst.IsStatic())

	got, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "You are a travel concierge.", got)
}

func TestInstruction_FromFunc(t *testing.T) {
	inst := NewInstructionFromFunc(func(rc *core.RunContext) (string, error) {
		return "Assist " + rc.Agent.Name + " users.", nil
	})

	assert.False(t, inst.IsStatic())

	got, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "Assist Concierge users.", got)
}

func TestInstruction_FromProvider(t *testing.T) {
	inst := NewInstructionFromProvider(stubProvider{text: "Recommend destinations."})

	assert.False(t, inst.IsStatic())

	got, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "Recommend destinations.", got)
}

func TestInstruction_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	inst := NewInstructionFromProvider(stubProvider{err: boom})

	_, err := inst.Resolve(newTestRunContext())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
