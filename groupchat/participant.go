package groupchat

import (
	"fmt"

	"github.com/tripmesh/tripmesh/core"
)

// Role classifies a participant's behavioral position in the rotation.
// The interjection policy keys on this tag rather than on name literals, so
// renaming an agent never changes when the human gets a turn.
type Role int

const (
	// RoleEntry marks the participant that opens the conversation with a
	// greeting. There is at most one entry participant per roster.
	RoleEntry Role = iota + 1

	// RoleSpecialist marks a domain expert whose answers the user should be
	// given a chance to respond to.
	RoleSpecialist
)

// String returns a human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleEntry:
		return "entry"
	case RoleSpecialist:
		return "specialist"
	default:
		return "unknown"
	}
}

// Participant pairs an agent with its role tag. The roster is immutable for
// the lifetime of a conversation.
type Participant struct {
	Agent core.Agent
	Role  Role
}

// Name returns the participant's agent name.
func (p Participant) Name() string { return p.Agent.Name() }

// Entry creates an entry-role participant.
func Entry(agent core.Agent) Participant {
	return Participant{Agent: agent, Role: RoleEntry}
}

// Specialist creates a specialist-role participant.
func Specialist(agent core.Agent) Participant {
	return Participant{Agent: agent, Role: RoleSpecialist}
}

// Roster is the fixed, ordered set of conversation participants. Rotation
// order is the order participants were registered in.
type Roster struct {
	participants []Participant
	roles        map[string]Role
}

// NewRoster builds a roster from the given participants. Names must be
// unique and at most one participant may carry the entry role.
func NewRoster(participants ...Participant) (*Roster, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("roster requires at least one participant")
	}

	r := &Roster{
		participants: make([]Participant, 0, len(participants)),
		roles:        make(map[string]Role, len(participants)),
	}

	entrySeen := false
	for _, p := range participants {
		if p.Agent == nil {
			return nil, fmt.Errorf("participant with nil agent")
		}
		name := p.Name()
		if _, dup := r.roles[name]; dup {
			return nil, fmt.Errorf("duplicate participant %s", name)
		}
		if p.Role == RoleEntry {
			if entrySeen {
				return nil, fmt.Errorf("roster has more than one entry participant")
			}
			entrySeen = true
		}
		r.participants = append(r.participants, p)
		r.roles[name] = p.Role
	}

	return r, nil
}

// Participants returns the participants in rotation order.
func (r *Roster) Participants() []Participant {
	out := make([]Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// Len returns the number of participants.
func (r *Roster) Len() int { return len(r.participants) }

// At returns the participant at the given rotation index.
func (r *Roster) At(i int) Participant { return r.participants[i] }

// RoleOf returns the role tag for a participant name. The second return is
// false for names outside the roster (e.g. the human user).
func (r *Roster) RoleOf(name string) (Role, bool) {
	role, ok := r.roles[name]
	return role, ok
}
