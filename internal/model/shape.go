package model

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// ShapeKind identifies what a rendered shape represents
type ShapeKind int

const (
	ShapeKindPanel ShapeKind = iota
	ShapeKindSegment
)

// Shape is a renderable polygon derived from building insights. It is
// ephemeral: rebuilt whenever the source data or visualization parameters
// change, never persisted.
type Shape struct {
	ID           string    `json:"id"`
	Kind         ShapeKind `json:"kind"`
	SegmentIndex int       `json:"segmentIndex"`

	// Ring is a closed ring of geographic points in GeoJSON (lng, lat) order
	Ring orb.Ring `json:"ring"`

	// ColorIndex indexes a 256-entry palette; panels only
	ColorIndex int `json:"colorIndex"`

	// EnergyKwh is the displayed (capacity-scaled) yearly yield; panels only
	EnergyKwh float64 `json:"energyKwh"`

	Visible bool `json:"visible"`
}

// SegmentSpatial wraps a segment shape for R-tree indexing
type SegmentSpatial struct {
	SegmentIndex int
	BoundingBox  orb.Bound
	Shape        *Shape
}

// Bounds implements the rtreego.Spatial interface
func (s *SegmentSpatial) Bounds() rtreego.Rect {
	// Convert orb.Bound to rtreego.Rect format
	minX, minY := s.BoundingBox.Min[0], s.BoundingBox.Min[1]
	maxX, maxY := s.BoundingBox.Max[0], s.BoundingBox.Max[1]

	rect, err := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{maxX - minX, maxY - minY},
	)
	if err != nil {
		// Degenerate bound (zero width or height). Index it as a sliver of
		// ~0.1mm in degrees so the segment stays searchable.
		rect, _ = rtreego.NewRect(
			rtreego.Point{minX, minY},
			[]float64{1e-9, 1e-9},
		)
	}

	return rect
}
