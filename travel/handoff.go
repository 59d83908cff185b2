package travel

import (
	"github.com/tripmesh/tripmesh/agent"
	"github.com/tripmesh/tripmesh/model"
	"github.com/tripmesh/tripmesh/tool"
)

// TravelInfoCoordinatorName is the handoff member that fronts the trip
// briefing pipeline.
const TravelInfoCoordinatorName = "TravelInfoCoordinator"

// newHandoffSupportAgent creates the support router used in the handoff
// group. Its instructions differ from the group chat support agent: here it
// routes rather than greets.
func newHandoffSupportAgent(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(SupportAgentName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"If the user intent is travel information or flights, route the user query to the appropriate agent. " +
				"Otherwise, explain that you cannot handle the request.")
		o.EnableFunctionCalling = true
	})
	a.SetDescription("Handles requests no specialist can serve.")
	return a
}

// newTripAdvisor creates the triage router that classifies user intent.
func newTripAdvisor(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(TripAdvisorName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a request router. Analyze the user's query and extract their intent: " +
				"if the user query is about travel information, destinations, tips and budgets, transfer the user query to the TravelInfoCoordinator. " +
				"Do not transfer to the TravelInfoCoordinator if the user query is about flights, as this is handled by the FlightSpecialist. " +
				"If the user query is about sport topics, events, or trivia, transfer the user query to the SportSpecialist. " +
				"If the user query is about flights to the travel destination, transfer the user query to the FlightSpecialist. " +
				"For any other intent, transfer the user query to the SupportAgent with a polite message explaining that you cannot handle the request.")
		o.EnableFunctionCalling = true
	})
	a.SetDescription("Analyzes user intent and routes to the right agent.")
	return a
}

// newTravelInfoCoordinator creates the travel advisor member of the handoff
// group. The full trip briefing runs as a separate sequential pipeline (see
// NewTripBriefingPipeline); within the handoff group this member answers
// travel queries directly. It carries the trip notes tool so traveler
// preferences stated earlier in the session survive routing hops.
func newTravelInfoCoordinator(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(TravelInfoCoordinatorName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a travel assistant. Use your general knowledge to provide travel advice, destination information, and answer travel-related questions for the user. " +
				"You will also provide a summary of your findings. " +
				"At the end of your message add up weather information for the destination, if available. " +
				"Use the trip_notes tool to save traveler preferences you learn (budget, season, departure city) and to recall them before answering. " +
				"Do not provide any information unless it is strictly related to travel destinations, tips, or budgets. " +
				"If the user query is not related to travel, route the query to the SupportAgent.")
		o.EnableFunctionCalling = true
	})
	a.SetDescription("Provides travel assistance with a summarized briefing.")
	a.RegisterTool(NewTripNotesTool())
	return a
}

// newHandoffSportSpecialist creates the sport member of the handoff group.
func newHandoffSportSpecialist(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(SportSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a sports expert. Your job is to provide information, facts, and answer questions about sports to the user. " +
				"Do not provide any information unless it is strictly related to sports topics, events, or trivia. " +
				"If the user query is not related to sports, route the query to the SupportAgent.")
		o.EnableFunctionCalling = true
	})
	a.SetDescription("Answers sports questions, facts and trivia.")
	return a
}

// newHandoffFlightSpecialist creates the flight member of the handoff group.
func newHandoffFlightSpecialist(llm model.Model, flightTool tool.Tool) *agent.ModelAgent {
	a := agent.NewModelAgent(FlightSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a flights expert. Your job is to provide full details about flights available to the travel destination. " +
				"Do not provide any flights information that is not related to the travel destination. " +
				"If the user query is not related to flights, route the query to the SupportAgent.")
		o.EnableFunctionCalling = true
	})
	a.SetDescription("Provides flight details for the travel destination.")
	if flightTool != nil {
		a.RegisterTool(flightTool)
	}
	return a
}

// HandoffGroupOptions configures the travel handoff group.
type HandoffGroupOptions struct {
	// FlightTool is an optional flight lookup tool for the FlightSpecialist.
	FlightTool tool.Tool
}

// NewHandoffGroup assembles the intent-routing travel assistant: the support
// agent receives the user, the TripAdvisor triages intent, and the travel /
// sport / flight members answer, each able to bounce unrelated queries back
// to support.
func NewHandoffGroup(llm model.Model, optFns ...func(o *HandoffGroupOptions)) (*agent.HandoffAgent, error) {
	var opts HandoffGroupOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	support := newHandoffSupportAgent(llm)
	advisor := newTripAdvisor(llm)
	travelInfo := newTravelInfoCoordinator(llm)
	sport := newHandoffSportSpecialist(llm)
	flight := newHandoffFlightSpecialist(llm, opts.FlightTool)

	topology := agent.NewHandoffs().
		Add(support.Name(), advisor.Name(), "Transfer to this agent for analyzing user intent").
		Add(support.Name(), travelInfo.Name(), "Transfer to this agent if the user requires travel assistance").
		Add(support.Name(), sport.Name(), "Transfer to this agent if the user requires sports assistance").
		Add(advisor.Name(), support.Name(), "Transfer to this agent if the user query is not related to travel or sport").
		Add(advisor.Name(), travelInfo.Name(), "Transfer to this agent if the user query is about travel information, tips or budgets").
		Add(advisor.Name(), sport.Name(), "Transfer to this agent if the user query is about sport topics, events or trivia").
		Add(advisor.Name(), flight.Name(), "Transfer to this agent if the user query is about flights to the travel destination").
		Add(travelInfo.Name(), support.Name(), "Transfer to this agent if the user query is not related to travel assistance").
		Add(sport.Name(), support.Name(), "Transfer to this agent if the user query is not related to sports assistance").
		Add(flight.Name(), support.Name(), "Transfer to this agent if the user query is not related to flights assistance")

	return agent.NewHandoffAgent("TravelHandoff", topology, support, advisor, travelInfo, sport, flight)
}
