package groupchat

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/agent"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/session"
)

// stubAgent emits one scripted text message per turn, following the same
// emit-then-wait-for-resume contract real agents use.
type stubAgent struct {
	agent.BaseAgent
	replies []string
	calls   int
	runErr  error
}

func newStubAgent(name string, replies ...string) *stubAgent {
	return &stubAgent{BaseAgent: agent.NewBaseAgent(name), replies: replies}
}

func (a *stubAgent) Run(runCtx *core.RunContext) error {
	if a.runErr != nil {
		return a.runErr
	}

	text := "ok"
	if a.calls < len(a.replies) {
		text = a.replies[a.calls]
	}
	a.calls++

	ev := core.NewMessageEvent(a.Name(), text)
	ev.RunID = runCtx.RunID

	select {
	case <-runCtx.Context.Done():
		return runCtx.Context.Err()
	case runCtx.Emit <- ev:
	}

	if runCtx.Resume != nil {
		select {
		case <-runCtx.Context.Done():
			return runCtx.Context.Err()
		case <-runCtx.Resume:
		}
	}

	return nil
}

// newChatRunContext wires a run context against an in-memory session store
// with a pump goroutine standing in for the runner: it persists emitted
// events and signals resume.
func newChatRunContext(t *testing.T) (*core.RunContext, *session.InMemoryStore) {
	t.Helper()

	store := session.NewInMemoryStore()
	sess, err := store.Create("chat-session")
	require.NoError(t, err)

	emit := make(chan core.Event, 16)
	resume := make(chan struct{}, 1)

	runCtx := core.NewRunContext(
		context.Background(),
		sess.ID,
		"run-1",
		core.AgentInfo{Name: "TravelChat", Type: "groupchat"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "I want to plan a trip."}}},
		emit,
		resume,
		sess,
		store,
		nil,
		nil,
		logging.NoOpLogger{},
	)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev := <-emit:
				_ = store.AppendEvent(sess.ID, ev)
				select {
				case resume <- struct{}{}:
				default:
				}
			case <-done:
				return
			}
		}
	}()
	t.Cleanup(func() { close(done) })

	return runCtx, store
}

func sessionAuthors(t *testing.T, store *session.InMemoryStore, sessionID string) []string {
	t.Helper()

	sess, err := store.Get(sessionID)
	require.NoError(t, err)

	authors := make([]string, 0, len(sess.Events))
	for _, ev := range sess.GetEvents() {
		authors = append(authors, ev.Author)
	}
	return authors
}

func TestCoordinator_HumanInterjectionFlow(t *testing.T) {
	support := newStubAgent("SupportAgent", "Hi! Where would you like to travel?")
	flight := newStubAgent("FlightSpecialist", "There are daily flights from London.")

	roster, err := NewRoster(Entry(support), Specialist(flight))
	require.NoError(t, err)

	inputs := []string{"I want to fly to Romania."}
	chat, err := NewCoordinator("TravelChat", roster, func(o *CoordinatorOptions) {
		o.HumanResponse = func(_ context.Context, history []Message) (string, error) {
			if len(inputs) == 0 {
				return "", io.EOF
			}
			next := inputs[0]
			inputs = inputs[1:]
			return next, nil
		}
	})
	require.NoError(t, err)

	runCtx, store := newChatRunContext(t)

	require.NoError(t, chat.Run(runCtx))

	assert.Equal(t,
		[]string{"SupportAgent", "user", "FlightSpecialist"},
		sessionAuthors(t, store, runCtx.SessionID))
	assert.Equal(t, 1, support.calls)
	assert.Equal(t, 1, flight.calls)
}

func TestCoordinator_ResumesFromNextParticipant(t *testing.T) {
	support := newStubAgent("SupportAgent")
	weather := newStubAgent("WeatherSpecialist")
	sport := newStubAgent("SportSpecialist")

	roster, err := NewRoster(Entry(support), Specialist(weather), Specialist(sport))
	require.NoError(t, err)

	replies := 3
	chat, err := NewCoordinator("TravelChat", roster, func(o *CoordinatorOptions) {
		o.HumanResponse = func(_ context.Context, _ []Message) (string, error) {
			if replies == 0 {
				return "", io.EOF
			}
			replies--
			return "go on", nil
		}
	})
	require.NoError(t, err)

	runCtx, store := newChatRunContext(t)

	require.NoError(t, chat.Run(runCtx))

	// Rotation order survives human interjections: each suspension resumes
	// from the participant who would have gone next.
	assert.Equal(t,
		[]string{"SupportAgent", "user", "WeatherSpecialist", "user", "SportSpecialist", "user", "SupportAgent"},
		sessionAuthors(t, store, runCtx.SessionID))
}

func TestCoordinator_MaxRoundsTerminates(t *testing.T) {
	a := newStubAgent("SupportAgent")
	b := newStubAgent("WeatherSpecialist")

	roster, err := NewRoster(Entry(a), Specialist(b))
	require.NoError(t, err)

	chat, err := NewCoordinator("TravelChat", roster, func(o *CoordinatorOptions) {
		o.Policy = ContinueRotation
		o.MaxRounds = 5
	})
	require.NoError(t, err)

	runCtx, store := newChatRunContext(t)

	require.NoError(t, chat.Run(runCtx))

	assert.Len(t, sessionAuthors(t, store, runCtx.SessionID), 5)
	assert.Equal(t, 3, a.calls)
	assert.Equal(t, 2, b.calls)
}

func TestCoordinator_MaxRoundsPerParticipantTerminates(t *testing.T) {
	a := newStubAgent("SupportAgent")
	b := newStubAgent("WeatherSpecialist")

	roster, err := NewRoster(Entry(a), Specialist(b))
	require.NoError(t, err)

	chat, err := NewCoordinator("TravelChat", roster, func(o *CoordinatorOptions) {
		o.Policy = ContinueRotation
		o.MaxRounds = 0
		o.MaxRoundsPerParticipant = 2
	})
	require.NoError(t, err)

	runCtx, store := newChatRunContext(t)

	require.NoError(t, chat.Run(runCtx))

	// Each participant takes at most two turns before the cap fires.
	assert.Len(t, sessionAuthors(t, store, runCtx.SessionID), 4)
	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 2, b.calls)
}

func TestCoordinator_ParticipantErrorIsFatal(t *testing.T) {
	backendErr := errors.New("model unreachable")
	broken := newStubAgent("SupportAgent")
	broken.runErr = backendErr

	roster, err := NewRoster(Entry(broken))
	require.NoError(t, err)

	chat, err := NewCoordinator("TravelChat", roster)
	require.NoError(t, err)

	runCtx, _ := newChatRunContext(t)

	err = chat.Run(runCtx)
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.ErrorContains(t, err, "participant SupportAgent failed")
}

func TestCoordinator_MissingHumanSourceTerminatesGracefully(t *testing.T) {
	support := newStubAgent("SupportAgent")

	roster, err := NewRoster(Entry(support))
	require.NoError(t, err)

	chat, err := NewCoordinator("TravelChat", roster)
	require.NoError(t, err)

	runCtx, store := newChatRunContext(t)

	require.NoError(t, chat.Run(runCtx))

	assert.Equal(t, []string{"SupportAgent"}, sessionAuthors(t, store, runCtx.SessionID))
}

func TestCoordinator_HumanSourceErrorIsFatal(t *testing.T) {
	support := newStubAgent("SupportAgent")

	roster, err := NewRoster(Entry(support))
	require.NoError(t, err)

	sourceErr := errors.New("terminal gone")
	chat, err := NewCoordinator("TravelChat", roster, func(o *CoordinatorOptions) {
		o.HumanResponse = func(_ context.Context, _ []Message) (string, error) {
			return "", sourceErr
		}
	})
	require.NoError(t, err)

	runCtx, _ := newChatRunContext(t)

	err = chat.Run(runCtx)
	require.Error(t, err)
	assert.ErrorIs(t, err, sourceErr)
}

func TestCoordinator_ContextCancellation(t *testing.T) {
	support := newStubAgent("SupportAgent")

	roster, err := NewRoster(Entry(support))
	require.NoError(t, err)

	chat, err := NewCoordinator("TravelChat", roster, func(o *CoordinatorOptions) {
		o.Policy = ContinueRotation
		o.MaxRounds = 0
	})
	require.NoError(t, err)

	runCtx, _ := newChatRunContext(t)
	ctx, cancel := context.WithCancel(runCtx.Context)
	runCtx.Context = ctx
	cancel()

	err = chat.Run(runCtx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "awaiting_next_agent", StateAwaitingNextAgent.String())
	assert.Equal(t, "awaiting_human", StateAwaitingHuman.String())
	assert.Equal(t, "terminated", StateTerminated.String())
}
