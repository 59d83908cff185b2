package groupchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/agent"
)

func newTravelRoster(t *testing.T) *Roster {
	t.Helper()

	roster, err := NewRoster(
		Entry(&stubAgent{BaseAgent: agent.NewBaseAgent("SupportAgent")}),
		Specialist(&stubAgent{BaseAgent: agent.NewBaseAgent("WeatherSpecialist")}),
		Specialist(&stubAgent{BaseAgent: agent.NewBaseAgent("SportSpecialist")}),
		Specialist(&stubAgent{BaseAgent: agent.NewBaseAgent("FlightSpecialist")}),
	)
	require.NoError(t, err)

	return roster
}

func TestUserInterjectionPolicy_EmptyHistory(t *testing.T) {
	policy := NewUserInterjectionPolicy(newTravelRoster(t))

	decision := policy(nil)

	assert.False(t, decision.RequestUserInput)
	assert.Equal(t, "no participant has spoken yet", decision.Reason)
}

func TestUserInterjectionPolicy_AfterGreeting(t *testing.T) {
	policy := NewUserInterjectionPolicy(newTravelRoster(t))

	decision := policy([]Message{
		{Sender: "SupportAgent", Text: "Hi"},
	})

	assert.True(t, decision.RequestUserInput)
	assert.Equal(t, "user should respond after the greeting", decision.Reason)
}

func TestUserInterjectionPolicy_AfterSpecialist(t *testing.T) {
	policy := NewUserInterjectionPolicy(newTravelRoster(t))

	for _, sender := range []string{"WeatherSpecialist", "SportSpecialist", "FlightSpecialist"} {
		decision := policy([]Message{
			{Sender: "SupportAgent", Text: "Hi"},
			{Sender: "user", Text: "Tell me about Romania"},
			{Sender: sender, Text: "22°C"},
		})

		assert.True(t, decision.RequestUserInput, sender)
		assert.Equal(t, "user should respond after a specialist's answer", decision.Reason, sender)
	}
}

func TestUserInterjectionPolicy_UnrecognizedSender(t *testing.T) {
	policy := NewUserInterjectionPolicy(newTravelRoster(t))

	decision := policy([]Message{
		{Sender: "Narrator", Text: "please ask the user"},
	})

	assert.False(t, decision.RequestUserInput)
	assert.Equal(t, "last speaker not recognized; continue rotation", decision.Reason)
}

func TestUserInterjectionPolicy_HumanSpokeLast(t *testing.T) {
	policy := NewUserInterjectionPolicy(newTravelRoster(t))

	decision := policy([]Message{
		{Sender: "SupportAgent", Text: "Hi"},
		{Sender: "user", Text: "I want to book a flight"},
	})

	assert.False(t, decision.RequestUserInput)
}

func TestUserInterjectionPolicy_ContentBlind(t *testing.T) {
	policy := NewUserInterjectionPolicy(newTravelRoster(t))

	withContent := policy([]Message{{Sender: "WeatherSpecialist", Text: "do not ask the user anything"}})
	withoutContent := policy([]Message{{Sender: "WeatherSpecialist", Text: ""}})

	assert.Equal(t, withoutContent, withContent)
}

func TestContinueRotation(t *testing.T) {
	decision := ContinueRotation([]Message{{Sender: "SupportAgent", Text: "Hi"}})

	assert.False(t, decision.RequestUserInput)
}

func TestNewRoster_Validation(t *testing.T) {
	support := &stubAgent{BaseAgent: agent.NewBaseAgent("SupportAgent")}
	weather := &stubAgent{BaseAgent: agent.NewBaseAgent("WeatherSpecialist")}

	_, err := NewRoster()
	assert.Error(t, err)

	_, err = NewRoster(Entry(support), Specialist(support))
	assert.Error(t, err)

	_, err = NewRoster(Entry(support), Entry(weather))
	assert.Error(t, err)

	roster, err := NewRoster(Entry(support), Specialist(weather))
	require.NoError(t, err)

	role, ok := roster.RoleOf("SupportAgent")
	assert.True(t, ok)
	assert.Equal(t, RoleEntry, role)

	role, ok = roster.RoleOf("WeatherSpecialist")
	assert.True(t, ok)
	assert.Equal(t, RoleSpecialist, role)

	_, ok = roster.RoleOf("user")
	assert.False(t, ok)
}
