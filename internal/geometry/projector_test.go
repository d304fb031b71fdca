package geometry

import (
	"math"
	"testing"

	"solarscope/internal/model"
	"solarscope/internal/util"
)

var testCenter = model.LatLng{Latitude: 37.4449739, Longitude: -122.1390355}

func TestPanelRingClosed(t *testing.T) {
	ring, err := PanelRing(testCenter, 0.5225, 0.9395, 35)
	if err != nil {
		t.Fatalf("PanelRing: %v", err)
	}
	if len(ring) != 5 {
		t.Fatalf("expected 5 ring points, got %d", len(ring))
	}
	if ring[0] != ring[4] {
		t.Fatalf("ring not closed: first %v last %v", ring[0], ring[4])
	}
}

func TestPanelRingArea(t *testing.T) {
	const w, h = 0.5225, 0.9395
	for _, rotation := range []float64{0, 35, 90, 217.5} {
		ring, err := PanelRing(testCenter, w, h, rotation)
		if err != nil {
			t.Fatalf("PanelRing rotation %v: %v", rotation, err)
		}

		// Reconstruct the corners in the local frame and measure the area
		// with the shoelace formula. The frame axes may be mirrored relative
		// to the projection's, but mirroring preserves absolute area.
		locals := make([][2]float64, 4)
		for i := 0; i < 4; i++ {
			pt := model.LatLng{Latitude: ring[i][1], Longitude: ring[i][0]}
			x, y := LocalFrame(testCenter, rotation, pt)
			locals[i] = [2]float64{x, y}
		}

		area := 0.0
		for i := 0; i < 4; i++ {
			j := (i + 1) % 4
			area += locals[i][0]*locals[j][1] - locals[j][0]*locals[i][1]
		}
		area = math.Abs(area) / 2

		want := 4 * w * h
		if math.Abs(area-want) > 1e-3*want {
			t.Fatalf("rotation %v: area %.6f, want %.6f", rotation, area, want)
		}
	}
}

func TestPanelRingRejectsNonFinite(t *testing.T) {
	bad := model.LatLng{Latitude: math.NaN(), Longitude: -122.1}
	if _, err := PanelRing(bad, 0.5, 0.9, 0); err == nil {
		t.Fatal("expected error for NaN latitude")
	}
	if _, err := PanelRing(testCenter, math.Inf(1), 0.9, 0); err == nil {
		t.Fatal("expected error for infinite half-width")
	}
}

// memberAt places a point at the given meter offsets east and north of the
// test center.
func memberAt(t *testing.T, east, north float64) model.LatLng {
	t.Helper()
	distance := math.Hypot(east, north)
	bearing := math.Atan2(east, north) * 180 / math.Pi
	p := util.Offset(testCenter.Latitude, testCenter.Longitude, distance, bearing)
	return model.LatLng{Latitude: p[0], Longitude: p[1]}
}

func TestSegmentRingPadding(t *testing.T) {
	// A 5m x 5m cluster of member centers around the segment center
	members := []model.LatLng{
		memberAt(t, -2.5, -2.5),
		memberAt(t, 2.5, -2.5),
		memberAt(t, 2.5, 2.5),
		memberAt(t, -2.5, 2.5),
	}

	ring, ok, err := SegmentRing(testCenter, 0, members)
	if err != nil {
		t.Fatalf("SegmentRing: %v", err)
	}
	if !ok {
		t.Fatal("expected a ring for a non-empty member set")
	}
	if len(ring) != 5 {
		t.Fatalf("expected closed 5-point ring, got %d points", len(ring))
	}
	if ring[0] != ring[4] {
		t.Fatalf("ring not closed: first %v last %v", ring[0], ring[4])
	}

	// 10% padding per side: 5m raw extent becomes 6m
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < 4; i++ {
		pt := model.LatLng{Latitude: ring[i][1], Longitude: ring[i][0]}
		x, y := LocalFrame(testCenter, 0, pt)
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	const want = 5 * (1 + 2*SegmentPaddingFraction)
	if math.Abs((maxX-minX)-want) > 0.05 {
		t.Fatalf("x extent %.3f, want %.3f", maxX-minX, want)
	}
	if math.Abs((maxY-minY)-want) > 0.05 {
		t.Fatalf("y extent %.3f, want %.3f", maxY-minY, want)
	}
}

func TestSegmentRingMinimumSize(t *testing.T) {
	// A single member collapses the raw box to a point; both axes must be
	// clamped to the minimum extent.
	ring, ok, err := SegmentRing(testCenter, 42, []model.LatLng{testCenter})
	if err != nil {
		t.Fatalf("SegmentRing: %v", err)
	}
	if !ok {
		t.Fatal("expected a ring")
	}

	for i := 0; i < 4; i++ {
		a := model.LatLng{Latitude: ring[i][1], Longitude: ring[i][0]}
		b := model.LatLng{Latitude: ring[(i+1)%4][1], Longitude: ring[(i+1)%4][0]}
		side := util.DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
		if side < SegmentMinSizeMeters-0.05 {
			t.Fatalf("side %d is %.3fm, want >= %.1fm", i, side, SegmentMinSizeMeters)
		}
	}
}

func TestSegmentRingEmptyMembers(t *testing.T) {
	ring, ok, err := SegmentRing(testCenter, 180, nil)
	if err != nil {
		t.Fatalf("empty member set must not error, got %v", err)
	}
	if ok || ring != nil {
		t.Fatalf("expected no ring for empty member set, got ok=%v ring=%v", ok, ring)
	}
}

func TestSegmentRingRejectsNonFinite(t *testing.T) {
	members := []model.LatLng{{Latitude: math.Inf(1), Longitude: 0}}
	if _, _, err := SegmentRing(testCenter, 0, members); err == nil {
		t.Fatal("expected error for infinite member latitude")
	}
}

func TestPanelRotation(t *testing.T) {
	if got := PanelRotation(model.OrientationLandscape, 35); got != 35 {
		t.Fatalf("landscape rotation: got %v want 35", got)
	}
	if got := PanelRotation(model.OrientationPortrait, 35); got != 125 {
		t.Fatalf("portrait rotation: got %v want 125", got)
	}
}
