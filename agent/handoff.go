package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/flow"
)

// Handoffs describes a directed handoff topology: for each source agent name,
// the set of target agent names it may transfer control to, each with a short
// hint telling the model when that target is the better choice.
type Handoffs map[string]map[string]string

// NewHandoffs creates an empty handoff topology.
func NewHandoffs() Handoffs { return make(Handoffs) }

// Add registers a single source -> target edge with a routing hint.
// It returns the topology to allow chaining.
func (h Handoffs) Add(source, target, hint string) Handoffs {
	if h[source] == nil {
		h[source] = make(map[string]string)
	}
	h[source][target] = hint
	return h
}

// AddMany registers edges from source to every listed target, using each
// target agent's own description as the routing hint.
func (h Handoffs) AddMany(source core.Agent, targets ...core.Agent) Handoffs {
	for _, t := range targets {
		h.Add(source.Name(), t.Name(), t.Description())
	}
	return h
}

// Targets returns the sorted target names reachable from source.
func (h Handoffs) Targets(source string) []string {
	edges := h[source]
	names := make([]string, 0, len(edges))
	for name := range edges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HandoffAgent coordinates a group of model agents connected by a handoff
// topology. Execution starts at the entry agent; whenever the active agent
// requests a transfer the coordinator routes control to the named member,
// provided the topology has a matching edge. Members may transfer back and
// forth any number of times within a single run; the run ends when the active
// agent finishes without requesting a transfer.
type HandoffAgent struct {
	BaseAgent
	entry    string
	members  map[string]*ModelAgent
	topology Handoffs
}

// NewHandoffAgent creates a handoff coordinator over the given members.
// The first member is the entry agent unless overridden with SetEntryAgent.
func NewHandoffAgent(name string, topology Handoffs, members ...*ModelAgent) (*HandoffAgent, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("handoff agent %s requires at least one member", name)
	}

	h := &HandoffAgent{
		BaseAgent: NewBaseAgent(name),
		entry:     members[0].Name(),
		members:   make(map[string]*ModelAgent, len(members)),
		topology:  topology,
	}

	children := make([]core.Agent, 0, len(members))
	for _, m := range members {
		if _, dup := h.members[m.Name()]; dup {
			return nil, fmt.Errorf("duplicate handoff member %s", m.Name())
		}
		h.members[m.Name()] = m
		children = append(children, m)
	}

	// Topology edges must refer to registered members.
	for source, edges := range topology {
		if _, ok := h.members[source]; !ok {
			return nil, fmt.Errorf("handoff source %s is not a member", source)
		}
		for target := range edges {
			if _, ok := h.members[target]; !ok {
				return nil, fmt.Errorf("handoff target %s (from %s) is not a member", target, source)
			}
		}
	}

	if err := h.SetSubAgents(children...); err != nil {
		return nil, err
	}

	return h, nil
}

// SetEntryAgent overrides which member receives the initial user message.
func (h *HandoffAgent) SetEntryAgent(name string) error {
	if _, ok := h.members[name]; !ok {
		return fmt.Errorf("entry agent %s is not a member", name)
	}
	h.entry = name
	return nil
}

// Run implements core.Agent. It executes the entry member; transfer requests
// emitted during the flow are routed through the topology until a member
// completes without handing off.
func (h *HandoffAgent) Run(runCtx *core.RunContext) error {
	return h.runMember(runCtx, h.entry)
}

func (h *HandoffAgent) runMember(runCtx *core.RunContext, name string) error {
	member, ok := h.members[name]
	if !ok {
		return fmt.Errorf("agent '%s' not found in handoff group %s", name, h.Name())
	}

	runCtx.LogDebug("handoff.member.run", "group", h.Name(), "member", name)

	branchCtx := runCtx.WithBranch(buildBranchPath(runCtx.Branch, name))

	return member.runFlow(branchCtx, &handoffMember{
		ModelAgent:  member,
		coordinator: h,
	})
}

// route transfers control from the named source member to target, enforcing
// the topology. An edge that does not exist is an error: the transfer tool
// only offers valid targets, so an unknown one means the model hallucinated
// an agent name.
func (h *HandoffAgent) route(runCtx *core.RunContext, source, target string) error {
	if _, ok := h.topology[source][target]; !ok {
		return fmt.Errorf("no handoff from %s to %s", source, target)
	}

	runCtx.LogDebug("handoff.route", "group", h.Name(), "from", source, "to", target)

	return h.runMember(runCtx, target)
}

// handoffMember adapts a member ModelAgent so the flow sees only the
// topology-permitted targets, and transfer requests come back to the
// coordinator instead of the member's own sub-agent hierarchy.
type handoffMember struct {
	*ModelAgent
	coordinator *HandoffAgent
}

// GetSubAgents returns the member's permitted handoff targets.
func (m *handoffMember) GetSubAgents() []flow.FlowAgent {
	targets := m.coordinator.topology.Targets(m.Name())
	agents := make([]flow.FlowAgent, 0, len(targets))
	for _, name := range targets {
		agents = append(agents, &handoffMember{
			ModelAgent:  m.coordinator.members[name],
			coordinator: m.coordinator,
		})
	}
	return agents
}

// IsTransferEnabled reports whether this member has any outgoing edge.
func (m *handoffMember) IsTransferEnabled() bool {
	return len(m.coordinator.topology[m.Name()]) > 0
}

// TransferToAgent routes the transfer through the coordinator.
func (m *handoffMember) TransferToAgent(runCtx *core.RunContext, agentName string) error {
	return m.coordinator.route(runCtx, m.Name(), agentName)
}

// ResolveInstructions appends the routing hints for this member's targets to
// its base instructions so the model knows who it can hand off to and why.
func (m *handoffMember) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	base, err := m.ModelAgent.ResolveInstructions(runCtx)
	if err != nil {
		return "", err
	}

	edges := m.coordinator.topology[m.Name()]
	if len(edges) == 0 {
		return base, nil
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\nYou can hand the conversation off to the following agents when they are better suited:\n")
	for _, target := range m.coordinator.topology.Targets(m.Name()) {
		fmt.Fprintf(&sb, "- %s: %s\n", target, edges[target])
	}

	return sb.String(), nil
}
