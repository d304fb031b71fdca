package model

import (
	"fmt"
	"time"
)

// PanelOrientation is the mounting rotation of a solar panel on its roof segment
type PanelOrientation string

const (
	OrientationPortrait  PanelOrientation = "PORTRAIT"
	OrientationLandscape PanelOrientation = "LANDSCAPE"
)

// LatLng is a geographic point in degrees
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ImageryDate is the capture date of the imagery the insights were computed from
type ImageryDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// SolarPanel describes one panel placement computed for the building.
// Panels arrive ordered by descending yearly energy production.
type SolarPanel struct {
	Center            LatLng           `json:"center"`
	Orientation       PanelOrientation `json:"orientation"`
	YearlyEnergyDcKwh float64          `json:"yearlyEnergyDcKwh"`
	SegmentIndex      int              `json:"segmentIndex"`
}

// SizeAndSunshineStats summarizes a roof segment's area and sunshine exposure
type SizeAndSunshineStats struct {
	AreaMeters2       float64   `json:"areaMeters2"`
	SunshineQuantiles []float64 `json:"sunshineQuantiles"`
	GroundAreaMeters2 float64   `json:"groundAreaMeters2"`
}

// RoofSegmentStat describes one planar roof segment of the building
type RoofSegmentStat struct {
	PitchDegrees              float64              `json:"pitchDegrees"`
	AzimuthDegrees            float64              `json:"azimuthDegrees"`
	Center                    LatLng               `json:"center"`
	Stats                     SizeAndSunshineStats `json:"stats"`
	PlaneHeightAtCenterMeters float64              `json:"planeHeightAtCenterMeters"`
}

// SolarPanelConfig is one selectable panel-count configuration
type SolarPanelConfig struct {
	PanelsCount       int     `json:"panelsCount"`
	YearlyEnergyDcKwh float64 `json:"yearlyEnergyDcKwh"`
}

// SolarPotential carries the building's panel layout and yield figures
type SolarPotential struct {
	MaxArrayPanelsCount int     `json:"maxArrayPanelsCount"`
	PanelCapacityWatts  float64 `json:"panelCapacityWatts"`
	PanelHeightMeters   float64 `json:"panelHeightMeters"`
	PanelWidthMeters    float64 `json:"panelWidthMeters"`
	PanelLifetimeYears  int     `json:"panelLifetimeYears"`

	MaxSunshineHoursPerYear float64 `json:"maxSunshineHoursPerYear"`

	RoofSegmentStats  []RoofSegmentStat  `json:"roofSegmentStats"`
	SolarPanels       []SolarPanel       `json:"solarPanels"`
	SolarPanelConfigs []SolarPanelConfig `json:"solarPanelConfigs"`
}

// BuildingInsights is the unit of data received from the Solar API.
// Immutable once received; all derived shapes are recomputed from it.
type BuildingInsights struct {
	Name           string         `json:"name"`
	Center         LatLng         `json:"center"`
	PostalCode     string         `json:"postalCode"`
	RegionCode     string         `json:"regionCode"`
	ImageryDate    ImageryDate    `json:"imageryDate"`
	SolarPotential SolarPotential `json:"solarPotential"`

	// FetchedAt is set locally when the response is received
	FetchedAt time.Time `json:"-"`
}

// Validate checks the cross-reference invariant between panels and segments:
// every panel's segment index must address an existing roof segment stat.
func (b *BuildingInsights) Validate() error {
	segments := len(b.SolarPotential.RoofSegmentStats)
	for i, panel := range b.SolarPotential.SolarPanels {
		if panel.SegmentIndex < 0 || panel.SegmentIndex >= segments {
			return fmt.Errorf("panel %d references segment %d, building has %d segments",
				i, panel.SegmentIndex, segments)
		}
	}
	return nil
}

// PanelsForConfig returns the panels rendered for the given configuration
// index. Panels are already ordered by descending yield, so a configuration
// with N panels selects the first N.
func (b *BuildingInsights) PanelsForConfig(configIndex int) ([]SolarPanel, error) {
	configs := b.SolarPotential.SolarPanelConfigs
	if configIndex < 0 || configIndex >= len(configs) {
		return nil, fmt.Errorf("config index %d out of range, building has %d configs",
			configIndex, len(configs))
	}

	count := configs[configIndex].PanelsCount
	if count > len(b.SolarPotential.SolarPanels) {
		count = len(b.SolarPotential.SolarPanels)
	}
	return b.SolarPotential.SolarPanels[:count], nil
}
