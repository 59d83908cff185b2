package groupchat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tripmesh/tripmesh/agent"
	"github.com/tripmesh/tripmesh/core"
)

// State is the coordinator's scheduling state.
type State int

const (
	// StateAwaitingNextAgent means the next participant in rotation takes
	// the turn. This is the initial state.
	StateAwaitingNextAgent State = iota

	// StateAwaitingHuman means the coordinator is blocked on one message
	// from the human-response source.
	StateAwaitingHuman

	// StateTerminated is terminal: a round cap was reached or the human
	// input source was exhausted.
	StateTerminated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateAwaitingNextAgent:
		return "awaiting_next_agent"
	case StateAwaitingHuman:
		return "awaiting_human"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// HumanResponseFunc supplies one free-text message from the human when the
// turn policy requests it. Returning io.EOF signals the input source is
// exhausted, which terminates the conversation gracefully; any other error
// is fatal for the conversation.
type HumanResponseFunc func(ctx context.Context, history []Message) (string, error)

// CoordinatorOptions configures a Coordinator instance.
type CoordinatorOptions struct {
	// Policy decides after each agent message whether the human takes the
	// next turn. Defaults to NewUserInterjectionPolicy over the roster.
	Policy TurnPolicy

	// MaxRounds caps the total number of agent turns. Zero means no cap.
	MaxRounds int

	// MaxRoundsPerParticipant caps the turns any single participant may
	// take. Zero means no cap.
	MaxRoundsPerParticipant int

	// HumanResponse supplies human messages. When nil, a policy request
	// for human input terminates the conversation as if the source hit EOF.
	HumanResponse HumanResponseFunc
}

// Coordinator drives a round-robin group chat over a fixed roster. After each
// participant's turn it evaluates the turn policy; when the policy requests
// human input it suspends, appends exactly one human message, and resumes
// rotation from the participant who would have gone next. Two independent
// caps bound the conversation: total rounds and rounds per participant.
//
// The coordinator owns the conversation's forward progress exclusively; the
// policy only reads history. History lives in the run's session and is not
// persisted beyond it.
type Coordinator struct {
	agent.BaseAgent
	roster        *Roster
	policy        TurnPolicy
	maxRounds     int
	maxPerAgent   int
	humanResponse HumanResponseFunc
}

// NewCoordinator creates a group chat coordinator over the given roster.
func NewCoordinator(name string, roster *Roster, optFns ...func(o *CoordinatorOptions)) (*Coordinator, error) {
	if roster == nil || roster.Len() == 0 {
		return nil, fmt.Errorf("group chat %s requires a non-empty roster", name)
	}

	opts := CoordinatorOptions{
		Policy:                  NewUserInterjectionPolicy(roster),
		MaxRounds:               20,
		MaxRoundsPerParticipant: 0,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Coordinator{
		BaseAgent:     agent.NewBaseAgent(name),
		roster:        roster,
		policy:        opts.Policy,
		maxRounds:     opts.MaxRounds,
		maxPerAgent:   opts.MaxRoundsPerParticipant,
		humanResponse: opts.HumanResponse,
	}

	children := make([]core.Agent, 0, roster.Len())
	for _, p := range roster.Participants() {
		children = append(children, p.Agent)
	}
	if err := c.SetSubAgents(children...); err != nil {
		return nil, err
	}

	return c, nil
}

// Run implements core.Agent. It executes the rotation until a cap is
// reached, the human source is exhausted, or a participant fails. Cap and
// EOF terminations are graceful: the last appended message stands as the
// final result. Participant (model backend) errors are fatal and returned.
func (c *Coordinator) Run(runCtx *core.RunContext) error {
	state := StateAwaitingNextAgent
	next := 0
	total := 0
	perAgent := make(map[string]int, c.roster.Len())

	for state != StateTerminated {
		if err := runCtx.Context.Err(); err != nil {
			return err
		}

		switch state {
		case StateAwaitingNextAgent:
			p := c.roster.At(next)

			if c.maxRounds > 0 && total >= c.maxRounds {
				runCtx.LogInfo("groupchat.terminate", "chat", c.Name(), "cause", "max_rounds", "rounds", total)
				state = StateTerminated
				continue
			}
			if c.maxPerAgent > 0 && perAgent[p.Name()] >= c.maxPerAgent {
				runCtx.LogInfo("groupchat.terminate", "chat", c.Name(), "cause", "max_rounds_per_participant", "participant", p.Name())
				state = StateTerminated
				continue
			}

			runCtx.LogDebug("groupchat.turn.start", "chat", c.Name(), "participant", p.Name(), "round", total+1)

			if err := p.Agent.Run(runCtx); err != nil {
				return fmt.Errorf("participant %s failed: %w", p.Name(), err)
			}

			total++
			perAgent[p.Name()]++
			next = (next + 1) % c.roster.Len()

			decision := c.policy(c.history(runCtx))
			runCtx.LogDebug(
				"groupchat.turn.decision",
				"chat", c.Name(),
				"request_user_input", decision.RequestUserInput,
				"reason", decision.Reason,
			)
			if decision.RequestUserInput {
				state = StateAwaitingHuman
			}

		case StateAwaitingHuman:
			if c.humanResponse == nil {
				runCtx.LogWarn("groupchat.terminate", "chat", c.Name(), "cause", "no_human_source")
				state = StateTerminated
				continue
			}

			text, err := c.humanResponse(runCtx.Context, c.history(runCtx))
			if err != nil {
				if errors.Is(err, io.EOF) {
					runCtx.LogInfo("groupchat.terminate", "chat", c.Name(), "cause", "human_source_exhausted")
					state = StateTerminated
					continue
				}
				return fmt.Errorf("human response failed: %w", err)
			}

			if err := c.appendHumanMessage(runCtx, text); err != nil {
				return err
			}
			state = StateAwaitingNextAgent
		}
	}

	return nil
}

// appendHumanMessage emits the human's message into the run so it lands in
// the session history before the next participant's turn, waiting for the
// runner's persistence confirmation like any other non-partial event.
func (c *Coordinator) appendHumanMessage(runCtx *core.RunContext, text string) error {
	ev := core.NewUserMessageEvent(runCtx.RunID, text)

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

// history projects the session's conversation events into the policy's view.
// Assistant events carry the authoring agent's name as sender; user events
// carry the author identity "user".
func (c *Coordinator) history(runCtx *core.RunContext) []Message {
	if runCtx.SessionStore != nil {
		if latest, err := runCtx.SessionStore.Get(runCtx.SessionID); err == nil && latest != nil {
			runCtx.Session = latest
		}
	}
	if runCtx.Session == nil {
		return nil
	}

	events := runCtx.Session.GetConversationHistory()
	history := make([]Message, 0, len(events))
	for _, ev := range events {
		if ev.Content == nil || ev.Content.Role == "tool" {
			continue
		}
		history = append(history, Message{Sender: ev.Author, Text: contentText(ev.Content)})
	}
	return history
}

// contentText concatenates the text parts of a content block.
func contentText(content *core.Content) string {
	var sb strings.Builder
	for _, part := range content.Parts {
		if tp, ok := part.(core.TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}
