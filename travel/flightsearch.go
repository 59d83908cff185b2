package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/tool"
)

// flightDataUnavailable is what the model sees when the flight lookup fails.
// Lookup failures degrade the answer, they never abort the conversation.
const flightDataUnavailable = "no flight data available"

// FlightQuery holds the structured parameters for one flight lookup.
type FlightQuery struct {
	Departure   string // departure airport or city
	Destination string // destination airport or city
	Date        string // outbound date, YYYY-MM-DD
}

// FlightSearchOptions configures a FlightSearchClient.
type FlightSearchOptions struct {
	// BaseURL is the search endpoint. Defaults to the SerpApi search URL.
	BaseURL string

	// HTTPClient is the client used for requests. Defaults to a client
	// with a 15 second timeout.
	HTTPClient *http.Client

	// Currency for returned prices. Defaults to "USD".
	Currency string
}

// FlightSearchClient queries a Google-Flights-shaped search API for flight
// availability between two locations on a date.
type FlightSearchClient struct {
	baseURL    string
	apiKey     string
	currency   string
	httpClient *http.Client
}

// NewFlightSearchClient creates a flight search client authenticated with the
// given API key.
func NewFlightSearchClient(apiKey string, optFns ...func(o *FlightSearchOptions)) *FlightSearchClient {
	opts := FlightSearchOptions{
		BaseURL:  "https://serpapi.com/search",
		Currency: "USD",
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &FlightSearchClient{
		baseURL:    opts.BaseURL,
		apiKey:     apiKey,
		currency:   opts.Currency,
		httpClient: opts.HTTPClient,
	}
}

// Search performs one flight lookup and returns the provider's decoded JSON
// response. Network, HTTP and decoding failures are returned as errors for
// the caller to translate.
func (c *FlightSearchClient) Search(ctx context.Context, q FlightQuery) (map[string]any, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("hl", "en")
	params.Set("departure_id", q.Departure)
	params.Set("arrival_id", q.Destination)
	params.Set("outbound_date", q.Date)
	params.Set("currency", c.currency)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build flight search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight search returned status %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode flight search response: %w", err)
	}

	return result, nil
}

// NewFlightSearchTool wraps the client as a function tool. A failed lookup is
// reported to the model as "no flight data available" instead of a tool
// error, so the flight specialist can answer gracefully and the conversation
// continues.
func NewFlightSearchTool(client *FlightSearchClient) *tool.FunctionTool {
	return tool.NewFunctionTool(
		"search_flights",
		"Search for flights based on departure, destination, and date.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"departure": map[string]any{
					"type":        "string",
					"description": "The departure airport or city.",
				},
				"destination": map[string]any{
					"type":        "string",
					"description": "The destination airport or city.",
				},
				"date": map[string]any{
					"type":        "string",
					"description": "The date of travel (YYYY-MM-DD).",
				},
			},
			"required": []string{"departure", "destination", "date"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			departure, _ := args["departure"].(string)
			destination, _ := args["destination"].(string)
			date, _ := args["date"].(string)
			q := FlightQuery{
				Departure:   departure,
				Destination: destination,
				Date:        date,
			}

			result, err := client.Search(toolCtx.Context(), q)
			if err != nil {
				toolCtx.LogWarn("flight search failed", "error", err.Error(), "departure", q.Departure, "destination", q.Destination)
				return flightDataUnavailable, nil
			}

			return result, nil
		},
	)
}
