package groupchat

// Message is the policy's read-only view of one history entry: who spoke and
// what they said. Policies key on sender identity only; Text is carried for
// custom policies that want it.
type Message struct {
	Sender string
	Text   string
}

// TurnDecision is the outcome of evaluating the turn policy after a message
// was appended: whether the human should get the next turn, and why.
type TurnDecision struct {
	RequestUserInput bool
	Reason           string
}

// TurnPolicy decides, given the conversation so far, whether the next actor
// is the human or the next participant in rotation. It is evaluated after
// every appended agent message, must be free of side effects, and must not
// block.
type TurnPolicy func(history []Message) TurnDecision

// ContinueRotation is the no-interjection policy: the rotation runs fully
// automatically until a round cap terminates it.
func ContinueRotation(history []Message) TurnDecision {
	return TurnDecision{RequestUserInput: false, Reason: "automatic rotation"}
}

// NewUserInterjectionPolicy returns the human-in-the-loop policy: the user
// gets a turn after the entry participant's greeting and after every
// specialist answer. The decision depends only on who spoke last, never on
// message content.
func NewUserInterjectionPolicy(roster *Roster) TurnPolicy {
	return func(history []Message) TurnDecision {
		if len(history) == 0 {
			return TurnDecision{
				RequestUserInput: false,
				Reason:           "no participant has spoken yet",
			}
		}

		last := history[len(history)-1].Sender
		role, ok := roster.RoleOf(last)
		if !ok {
			return TurnDecision{
				RequestUserInput: false,
				Reason:           "last speaker not recognized; continue rotation",
			}
		}

		switch role {
		case RoleEntry:
			return TurnDecision{
				RequestUserInput: true,
				Reason:           "user should respond after the greeting",
			}
		case RoleSpecialist:
			return TurnDecision{
				RequestUserInput: true,
				Reason:           "user should respond after a specialist's answer",
			}
		default:
			return TurnDecision{
				RequestUserInput: false,
				Reason:           "last speaker not recognized; continue rotation",
			}
		}
	}
}
