package solarapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"solarscope/internal/model"
)

const findClosestPath = "/v1/buildingInsights:findClosest"

// RequestError carries a failed Solar API response verbatim: the upstream
// numeric code, status string, and human-readable message.
type RequestError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("solar api request failed: %d %s: %s", e.Code, e.Status, e.Message)
}

// errorEnvelope is the wire wrapper the Solar API puts around errors
type errorEnvelope struct {
	Error RequestError `json:"error"`
}

// Client talks to the hosted Solar API
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Solar API client. baseURL has no trailing slash, e.g.
// "https://solar.googleapis.com".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FindClosestBuilding fetches the building insights for the building closest
// to the given location. Upstream failures are returned as *RequestError with
// the upstream code, status and message preserved.
func (c *Client) FindClosestBuilding(ctx context.Context, location model.LatLng) (*model.BuildingInsights, error) {
	query := url.Values{}
	query.Set("location.latitude", strconv.FormatFloat(location.Latitude, 'f', -1, 64))
	query.Set("location.longitude", strconv.FormatFloat(location.Longitude, 'f', -1, 64))
	query.Set("key", c.apiKey)

	endpoint := c.baseURL + findClosestPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach solar api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Code == 0 {
			// No decodable error payload, fall back to the HTTP status
			return nil, &RequestError{
				Code:    resp.StatusCode,
				Status:  resp.Status,
				Message: "solar api returned no error details",
			}
		}
		return nil, &envelope.Error
	}

	var insights model.BuildingInsights
	if err := json.NewDecoder(resp.Body).Decode(&insights); err != nil {
		return nil, fmt.Errorf("failed to decode building insights: %w", err)
	}

	if err := insights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid building insights: %w", err)
	}

	insights.FetchedAt = time.Now()
	return &insights, nil
}
