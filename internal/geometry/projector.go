package geometry

import (
	"fmt"
	"math"

	"solarscope/internal/model"
	"solarscope/internal/util"

	"github.com/paulmach/orb"
)

const (
	// SegmentPaddingFraction expands a segment bounding box by this fraction
	// of each axis extent, on both sides
	SegmentPaddingFraction = 0.1

	// SegmentMinSizeMeters is the smallest extent a segment bounding box may
	// have on either axis
	SegmentMinSizeMeters = 2.0
)

const radToDeg = 180.0 / math.Pi

// PanelRing projects a rotated rectangle centered on a geographic point into
// a closed ring of geographic coordinates. halfWidth and halfHeight are the
// rectangle's half-extents in meters; rotationDegrees is the combined panel
// orientation offset and roof segment azimuth.
//
// The ring has 5 points: four corners plus the first corner repeated.
func PanelRing(center model.LatLng, halfWidth, halfHeight, rotationDegrees float64) (orb.Ring, error) {
	if !allFinite(center.Latitude, center.Longitude, halfWidth, halfHeight, rotationDegrees) {
		return nil, fmt.Errorf("non-finite input in panel projection at (%v, %v)",
			center.Latitude, center.Longitude)
	}

	w, h := halfWidth, halfHeight
	corners := [5][2]float64{
		{+w, +h},
		{+w, -h},
		{-w, -h},
		{-w, +h},
		{+w, +h}, // close the ring
	}

	ring := make(orb.Ring, 0, len(corners))
	for _, c := range corners {
		x, y := c[0], c[1]
		distance := math.Hypot(x, y)
		bearing := math.Atan2(y, x)*radToDeg + rotationDegrees

		p := util.Offset(center.Latitude, center.Longitude, distance, bearing)
		ring = append(ring, orb.Point{p[1], p[0]})
	}

	return ring, nil
}

// SegmentRing computes a padded bounding rectangle around a roof segment's
// member panel centers and projects it back to geographic coordinates.
//
// Member positions are transformed into the segment's local frame (azimuth
// subtracted so +y points along the roof's facing direction), the axis-aligned
// bounding box over the local points is expanded by SegmentPaddingFraction per
// side and clamped to at least SegmentMinSizeMeters per axis, and the corners
// are emitted bottom-left, bottom-right, top-right, top-left, closed with a
// repeated first corner.
//
// An empty member set produces no ring: (nil, false, nil).
func SegmentRing(center model.LatLng, azimuthDegrees float64, members []model.LatLng) (orb.Ring, bool, error) {
	if len(members) == 0 {
		return nil, false, nil
	}
	if !allFinite(center.Latitude, center.Longitude, azimuthDegrees) {
		return nil, false, fmt.Errorf("non-finite segment center (%v, %v)",
			center.Latitude, center.Longitude)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, m := range members {
		if !allFinite(m.Latitude, m.Longitude) {
			return nil, false, fmt.Errorf("non-finite member point (%v, %v)",
				m.Latitude, m.Longitude)
		}

		x, y := LocalFrame(center, azimuthDegrees, m)
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	minX, maxX = expandAxis(minX, maxX)
	minY, maxY = expandAxis(minY, maxY)

	corners := [5][2]float64{
		{minX, minY}, // bottom-left
		{maxX, minY}, // bottom-right
		{maxX, maxY}, // top-right
		{minX, maxY}, // top-left
		{minX, minY},
	}

	ring := make(orb.Ring, 0, len(corners))
	for _, c := range corners {
		x, y := c[0], c[1]
		distance := math.Hypot(x, y)
		bearing := math.Atan2(x, y)*radToDeg + azimuthDegrees

		p := util.Offset(center.Latitude, center.Longitude, distance, bearing)
		ring = append(ring, orb.Point{p[1], p[0]})
	}

	return ring, true, nil
}

// LocalFrame converts a geographic point into meter offsets relative to the
// given center, with the frame rotated so +y points along rotationDegrees.
func LocalFrame(center model.LatLng, rotationDegrees float64, point model.LatLng) (x, y float64) {
	distance := util.DistanceMeters(center.Latitude, center.Longitude, point.Latitude, point.Longitude)
	heading := util.Heading(center.Latitude, center.Longitude, point.Latitude, point.Longitude)

	angle := (heading - rotationDegrees) / radToDeg
	return distance * math.Sin(angle), distance * math.Cos(angle)
}

// expandAxis applies the fractional padding and the minimum-size clamp to a
// single bounding-box axis
func expandAxis(min, max float64) (float64, float64) {
	pad := (max - min) * SegmentPaddingFraction
	min -= pad
	max += pad

	if max-min < SegmentMinSizeMeters {
		mid := (min + max) / 2
		min = mid - SegmentMinSizeMeters/2
		max = mid + SegmentMinSizeMeters/2
	}

	return min, max
}

// PanelRotation returns the total rotation for a panel ring: the orientation
// offset plus the owning segment's azimuth. Portrait panels are rotated a
// quarter turn relative to landscape ones.
func PanelRotation(orientation model.PanelOrientation, azimuthDegrees float64) float64 {
	if orientation == model.OrientationPortrait {
		return 90 + azimuthDegrees
	}
	return azimuthDegrees
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
