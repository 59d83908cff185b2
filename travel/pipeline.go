package travel

import (
	"github.com/tripmesh/tripmesh/agent"
	"github.com/tripmesh/tripmesh/model"
)

// NewTravelSpecialist creates the general travel advisor used as the first
// stage of the trip briefing pipeline.
func NewTravelSpecialist(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(TravelSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a travel assistant. Use your general knowledge to provide travel advice, destination information, and answer travel-related questions for the user.")
		o.AllowTransfer = false
		o.EnableFunctionCalling = false
	})
	a.SetDescription("Provides travel advice and destination information.")
	return a
}

// NewBriefingWeatherSpecialist creates the pipeline's weather stage. Unlike
// the group chat weather agent it never yields turns; it only enriches the
// briefing with weather details.
func NewBriefingWeatherSpecialist(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(WeatherSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a weather expert. Provide the current weather for the destination, if available. " +
				"Current and season average temperatures should be in both Celsius and Fahrenheit, and weather advisories should be included.")
		o.AllowTransfer = false
		o.EnableFunctionCalling = false
	})
	a.SetDescription("Adds weather details to the trip briefing.")
	return a
}

// NewEntertainmentSpecialist creates the pipeline's entertainment stage.
func NewEntertainmentSpecialist(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(EntertainmentSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are an expert in entertainment related activities and events. " +
				"Mention the most popular events, festivals, and cultural activities that a tourist should not miss, all related to the travel destination.")
		o.AllowTransfer = false
		o.EnableFunctionCalling = false
	})
	a.SetDescription("Recommends events, festivals and cultural activities.")
	return a
}

// NewSynopsisSpecialist creates the summarizer that closes the pipeline.
func NewSynopsisSpecialist(llm model.Model) *agent.ModelAgent {
	a := agent.NewModelAgent(SynopsisSpecialistName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(
			"You are a summarization expert. Take the provided text and create a concise, one-sentence summary.")
		o.AllowTransfer = false
		o.EnableFunctionCalling = false
	})
	a.SetDescription("Summarizes the assembled briefing into one sentence.")
	return a
}

// NewTripBriefingPipeline assembles the sequential trip briefing: travel
// advice, then weather, then entertainment, closed by a one-sentence
// synopsis. Each stage sees the previous stages' output through the shared
// session.
func NewTripBriefingPipeline(llm model.Model) (*agent.SequentialAgent, error) {
	return agent.NewSequentialAgent(
		"TripBriefing",
		NewTravelSpecialist(llm),
		NewBriefingWeatherSpecialist(llm),
		NewEntertainmentSpecialist(llm),
		NewSynopsisSpecialist(llm),
	)
}
