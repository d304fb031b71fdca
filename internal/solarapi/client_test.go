package solarapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"solarscope/internal/model"
)

const insightsFixture = `{
	"name": "buildings/abc123",
	"center": {"latitude": 37.4449739, "longitude": -122.1390355},
	"postalCode": "94303",
	"imageryDate": {"year": 2023, "month": 8, "day": 14},
	"solarPotential": {
		"maxArrayPanelsCount": 3,
		"panelCapacityWatts": 250,
		"panelHeightMeters": 1.879,
		"panelWidthMeters": 1.045,
		"panelLifetimeYears": 20,
		"roofSegmentStats": [
			{"pitchDegrees": 20, "azimuthDegrees": 180,
			 "center": {"latitude": 37.4449739, "longitude": -122.1390355},
			 "stats": {"areaMeters2": 50, "groundAreaMeters2": 47}}
		],
		"solarPanels": [
			{"center": {"latitude": 37.44498, "longitude": -122.13903},
			 "orientation": "LANDSCAPE", "yearlyEnergyDcKwh": 200, "segmentIndex": 0},
			{"center": {"latitude": 37.44497, "longitude": -122.13904},
			 "orientation": "LANDSCAPE", "yearlyEnergyDcKwh": 150, "segmentIndex": 0},
			{"center": {"latitude": 37.44496, "longitude": -122.13905},
			 "orientation": "PORTRAIT", "yearlyEnergyDcKwh": 100, "segmentIndex": 0}
		],
		"solarPanelConfigs": [
			{"panelsCount": 1, "yearlyEnergyDcKwh": 200},
			{"panelsCount": 3, "yearlyEnergyDcKwh": 450}
		]
	}
}`

func TestFindClosestBuilding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != findClosestPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Fatalf("api key not forwarded: got %q", got)
		}
		if got := r.URL.Query().Get("location.latitude"); got != "37.4449739" {
			t.Fatalf("latitude not forwarded: got %q", got)
		}
		w.Write([]byte(insightsFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	insights, err := client.FindClosestBuilding(context.Background(), model.LatLng{
		Latitude: 37.4449739, Longitude: -122.1390355,
	})
	if err != nil {
		t.Fatalf("FindClosestBuilding: %v", err)
	}

	if insights.Name != "buildings/abc123" {
		t.Fatalf("name: got %q", insights.Name)
	}
	if got := len(insights.SolarPotential.SolarPanels); got != 3 {
		t.Fatalf("panels: got %d want 3", got)
	}
	if insights.FetchedAt.IsZero() {
		t.Fatal("FetchedAt not set")
	}
}

func TestFindClosestBuildingUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"code": 404, "status": "NOT_FOUND", "message": "Requested entity was not found."}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.FindClosestBuilding(context.Background(), model.LatLng{Latitude: 0, Longitude: 0})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.Code != 404 || reqErr.Status != "NOT_FOUND" {
		t.Fatalf("upstream error not preserved: %+v", reqErr)
	}
	if reqErr.Message != "Requested entity was not found." {
		t.Fatalf("upstream message not verbatim: %q", reqErr.Message)
	}
}

func TestFindClosestBuildingInvalidSegmentIndex(t *testing.T) {
	payload := `{
		"name": "buildings/bad",
		"center": {"latitude": 1, "longitude": 2},
		"solarPotential": {
			"roofSegmentStats": [],
			"solarPanels": [{"center": {"latitude": 1, "longitude": 2},
				"orientation": "PORTRAIT", "yearlyEnergyDcKwh": 10, "segmentIndex": 3}]
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.FindClosestBuilding(context.Background(), model.LatLng{Latitude: 1, Longitude: 2})
	if err == nil {
		t.Fatal("expected validation error for out-of-range segment index")
	}
}
