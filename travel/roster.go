package travel

import (
	"github.com/tripmesh/tripmesh/agent"
	"github.com/tripmesh/tripmesh/groupchat"
	"github.com/tripmesh/tripmesh/model"
	"github.com/tripmesh/tripmesh/tool"
)

// Canonical participant names. The interjection policy is keyed on role
// tags, not these literals, but the names still appear in transcripts and
// logs.
const (
	SupportAgentName            = "SupportAgent"
	WeatherSpecialistName       = "WeatherSpecialist"
	SportSpecialistName         = "SportSpecialist"
	FlightSpecialistName        = "FlightSpecialist"
	TravelSpecialistName        = "TravelSpecialist"
	EntertainmentSpecialistName = "EntertainmentSpecialist"
	SynopsisSpecialistName      = "SynopsisSpecialist"
	TripAdvisorName             = "TripAdvisor"
)

// NewSupportAgent creates the customer-support agent that greets the user
// and collects their travel interests.
func NewSupportAgent(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(SupportAgentName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a specialized agent in customer support. " +
				"Greet the user and ask them about their travel interests, including destination, preferred season, and any specific activities like sports events or flight booking needs. " +
				"Once the user provides their initial request, yield the turn to the appropriate specialist agent (WeatherSpecialist, SportSpecialist, or FlightSpecialist) based on the user's stated interests. " +
				"Do not try to answer questions related to weather, sports, or flights yourself.")
		o.AllowTransfer = false
		o.EnableFunctionCalling = false
	})
	a.SetDescription("Welcomes the user and asks them about their interest.")
	return a
}

// NewWeatherSpecialist creates the weather expert for group conversations.
func NewWeatherSpecialist(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(WeatherSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a weather expert. Provide the current weather for the destination, if available. " +
				"Current and season average temperatures should be in both Celsius and Fahrenheit, and weather advisories should be included. " +
				"Only respond to queries specifically about weather. For any other queries do not output any weather information. " +
				"If the user query is about flights or flight booking, explicitly state that you cannot help with that and yield the turn to the FlightSpecialist. " +
				"If the user query is about sports events or sports-related topics, explicitly state that you cannot help with that and yield the turn to the SportSpecialist. " +
				"If the user query is not related to sports, weather, or flights, send a polite message back to the user and yield the turn to the SupportAgent.")
		o.AllowTransfer = false
		o.EnableFunctionCalling = false
	})
	a.SetDescription("Provides current weather information including temperature and advisories.")
	return a
}

// NewSportSpecialist creates the sports expert for group conversations.
func NewSportSpecialist(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(SportSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a sports expert. Your job is to provide information, facts, and answer questions about sport events related to the travel destination. " +
				"Only respond to queries specifically about sports events or sports-related topics. " +
				"If the user query is about flights, flight booking, or travel arrangements, explicitly state that you cannot help with that and yield the turn to the FlightSpecialist. " +
				"If the user query is about weather, explicitly state that you cannot help with that and yield the turn to the WeatherSpecialist. " +
				"If the user query is not related to sports, weather, or flights, send a polite message back to the user and yield the turn to the SupportAgent.")
		o.AllowTransfer = false
		o.EnableFunctionCalling = false
	})
	a.SetDescription("Provides information and answers questions about sports.")
	return a
}

// NewFlightSpecialist creates the flights expert. When flightTool is non-nil
// the agent can call it to look up real availability; otherwise it answers
// from instructions alone.
func NewFlightSpecialist(llm model.Model, flightTool tool.Tool) *agent.ModelAgent {
	a := agent.NewModelAgent(FlightSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a flights expert. Your job is to provide full details about flights available to the travel destination. " +
				"If the user did not provide the departure location, ask for it. " +
				"Only respond to queries specifically about flights or flight booking. " +
				"If the user query is about weather, explicitly state that you cannot help with that and yield the turn to the WeatherSpecialist. " +
				"If the user query is about sports events or sports-related topics, explicitly state that you cannot help with that and yield the turn to the SportSpecialist. " +
				"If the user query is not related to flights, weather, or sports, send back a polite message to the user and yield the turn to the SupportAgent.")
		o.AllowTransfer = false
		o.EnableFunctionCalling = flightTool != nil
	})
	a.SetDescription("Provides details about available flights to a destination.")
	if flightTool != nil {
		a.RegisterTool(flightTool)
	}
	return a
}

// GroupChatOptions configures the travel group chat built by NewGroupChat.
type GroupChatOptions struct {
	// FlightTool is an optional flight lookup tool for the FlightSpecialist.
	FlightTool tool.Tool

	// HumanResponse supplies the user's messages when the interjection
	// policy pauses the rotation.
	HumanResponse groupchat.HumanResponseFunc

	// MaxRounds caps total agent turns. Zero means no cap.
	MaxRounds int

	// MaxRoundsPerParticipant caps turns per participant.
	MaxRoundsPerParticipant int
}

// NewGroupChat assembles the travel assistant group chat: the support agent
// greets, the weather / sport / flight specialists answer, and the user is
// interjected after the greeting and after every specialist reply.
func NewGroupChat(llm model.Model, optFns ...func(o *GroupChatOptions)) (*groupchat.Coordinator, error) {
	opts := GroupChatOptions{
		MaxRounds:               20,
		MaxRoundsPerParticipant: 9,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	roster, err := groupchat.NewRoster(
		groupchat.Entry(NewSupportAgent(llm)),
		groupchat.Specialist(NewWeatherSpecialist(llm)),
		groupchat.Specialist(NewSportSpecialist(llm)),
		groupchat.Specialist(NewFlightSpecialist(llm, opts.FlightTool)),
	)
	if err != nil {
		return nil, err
	}

	return groupchat.NewCoordinator("TravelGroupChat", roster, func(o *groupchat.CoordinatorOptions) {
		o.Policy = groupchat.NewUserInterjectionPolicy(roster)
		o.MaxRounds = opts.MaxRounds
		o.MaxRoundsPerParticipant = opts.MaxRoundsPerParticipant
		o.HumanResponse = opts.HumanResponse
	})
}
