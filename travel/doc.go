// Package travel assembles TripMesh's travel assistant: a roster of
// role-specific agents (support, weather, sport, flight, entertainment,
// synopsis, triage) and three ways to orchestrate them.
//
// NewGroupChat builds the round-robin group conversation with human
// interjection after the greeting and after every specialist answer.
// NewHandoffGroup builds the intent-routing assistant where the TripAdvisor
// triages queries and members hand control between each other.
// NewTripBriefingPipeline builds the sequential briefing that layers travel
// advice, weather and entertainment into a one-sentence synopsis.
//
// NewFlightSearchTool gives the flight specialist real lookups against a
// Google-Flights-shaped API; lookup failures surface to the model as
// "no flight data available" and never abort the conversation.
package travel
