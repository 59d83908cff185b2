package travel

import (
	"fmt"

	"github.com/tripmesh/tripmesh/core"
)

// TripNotesTool lets an agent keep notes about the traveler across a
// conversation: preferences go to session state, free-form notes to the
// memory store, and drafted itineraries to the artifact store. The travel
// info coordinator carries it so advice given early in a session (budget,
// season, dietary needs) is still available turns later.
type TripNotesTool struct{}

// NewTripNotesTool creates the traveler notes tool.
func NewTripNotesTool() *TripNotesTool {
	return &TripNotesTool{}
}

// Name returns the tool identifier.
func (t *TripNotesTool) Name() string { return "trip_notes" }

// Description returns the tool description shown to the model.
func (t *TripNotesTool) Description() string {
	return "Keeps notes about the traveler. Use save_preference / get_preference for " +
		"structured facts (budget, season, departure city), remember / recall for " +
		"free-form notes, and save_itinerary / list_itineraries for drafted itineraries."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *TripNotesTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"operation": map[string]interface{}{
				"type": "string",
				"enum": []string{
					"save_preference", "get_preference",
					"remember", "recall",
					"save_itinerary", "list_itineraries",
				},
				"description": "Which notes operation to perform",
			},
			"key": map[string]interface{}{
				"type":        "string",
				"description": "Preference name, e.g. 'budget_per_day' or 'departure_city'",
			},
			"value": map[string]interface{}{
				"description": "Preference value for save_preference",
			},
			"note": map[string]interface{}{
				"type":        "string",
				"description": "Free-form note text for remember",
			},
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search text for recall",
			},
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Itinerary name for save_itinerary",
			},
			"itinerary": map[string]interface{}{
				"type":        "string",
				"description": "Itinerary text for save_itinerary",
			},
		},
		"required": []string{"operation"},
	}
}

// prefKey namespaces traveler preferences in session state.
func prefKey(name string) string { return "traveler_pref." + name }

// Call dispatches the requested notes operation.
func (t *TripNotesTool) Call(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error) {
	op, ok := args["operation"].(string)
	if !ok {
		return nil, fmt.Errorf("operation parameter is required")
	}

	switch op {
	case "save_preference":
		return t.savePreference(toolCtx, args)
	case "get_preference":
		return t.getPreference(toolCtx, args)
	case "remember":
		return t.remember(toolCtx, args)
	case "recall":
		return t.recall(toolCtx, args)
	case "save_itinerary":
		return t.saveItinerary(toolCtx, args)
	case "list_itineraries":
		return t.listItineraries(toolCtx)
	default:
		return nil, fmt.Errorf("unknown operation: %s", op)
	}
}

func (t *TripNotesTool) savePreference(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error) {
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("key parameter is required for save_preference")
	}
	value := args["value"]
	toolCtx.SetState(prefKey(key), value)
	return map[string]interface{}{"key": key, "value": value, "saved": true}, nil
}

func (t *TripNotesTool) getPreference(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error) {
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("key parameter is required for get_preference")
	}
	value, exists := toolCtx.GetState(prefKey(key))
	return map[string]interface{}{"key": key, "value": value, "exists": exists}, nil
}

func (t *TripNotesTool) remember(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error) {
	note, ok := args["note"].(string)
	if !ok || note == "" {
		return nil, fmt.Errorf("note parameter is required for remember")
	}
	md := map[string]interface{}{"source": toolCtx.AgentName()}
	if err := toolCtx.StoreMemory(note, md); err != nil {
		return nil, fmt.Errorf("store note: %w", err)
	}
	return map[string]interface{}{"saved": true}, nil
}

func (t *TripNotesTool) recall(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("query parameter is required for recall")
	}
	results, err := toolCtx.SearchMemory(query, 10)
	if err != nil {
		return nil, fmt.Errorf("recall notes: %w", err)
	}
	notes := make([]string, len(results))
	for i, r := range results {
		notes[i] = r.Content
	}
	return map[string]interface{}{"query": query, "notes": notes}, nil
}

func (t *TripNotesTool) saveItinerary(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error) {
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("name parameter is required for save_itinerary")
	}
	text, ok := args["itinerary"].(string)
	if !ok || text == "" {
		return nil, fmt.Errorf("itinerary parameter is required for save_itinerary")
	}
	if err := toolCtx.SaveArtifact(name, []byte(text)); err != nil {
		return nil, fmt.Errorf("save itinerary: %w", err)
	}
	return map[string]interface{}{"name": name, "bytes": len(text), "saved": true}, nil
}

func (t *TripNotesTool) listItineraries(toolCtx *core.ToolContext) (interface{}, error) {
	names, err := toolCtx.ListArtifacts()
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	return map[string]interface{}{"itineraries": names}, nil
}
