package visual

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"solarscope/internal/geometry"
	"solarscope/internal/model"
	"solarscope/internal/palette"
	"solarscope/internal/util"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrSuperseded is returned when a render request was overtaken by a newer
// one while its fetch was in flight; the stale result is discarded.
var ErrSuperseded = errors.New("render request superseded by a newer location")

// InsightsSource resolves a location to building insights
type InsightsSource interface {
	GetInsights(ctx context.Context, location model.LatLng) (*model.BuildingInsights, error)
}

// VisualService owns the visualization state for one building: the current
// insights, the selected panel configuration and capacity, the computed
// shapes, and the visibility filter. Shape recomputation is an explicit
// synchronous pass triggered by state changes.
type VisualService struct {
	source InsightsSource

	// generation tags render requests; a completed fetch whose generation is
	// no longer current is discarded
	generation atomic.Int64

	mutex                sync.RWMutex
	insights             *model.BuildingInsights
	configIndex          int
	capacityWatts        float64
	defaultCapacityWatts float64
	filter               Filter

	shapes        []*model.Shape
	shapeSegments map[string]int // shape ID -> owning segment index
	segmentIndex  *rtreego.Rtree // spatial index over segment shapes
}

var (
	visualServiceInstance *VisualService
	visualServiceOnce     sync.Once
)

// GetVisualService returns the singleton instance of VisualService
func GetVisualService() *VisualService {
	visualServiceOnce.Do(func() {
		visualServiceInstance = NewVisualService(nil, 250)
	})
	return visualServiceInstance
}

// NewVisualService creates a standalone service instance (used by tests).
// fallbackCapacityWatts is used when the insights carry no default capacity.
func NewVisualService(source InsightsSource, fallbackCapacityWatts float64) *VisualService {
	return &VisualService{
		source:               source,
		defaultCapacityWatts: fallbackCapacityWatts,
		filter:               NewFilter(true, nil),
		shapeSegments:        make(map[string]int),
		segmentIndex:         rtreego.NewTree(2, 25, 50),
	}
}

// InitService wires the insights source and the configured default panel
// capacity into the singleton
func (s *VisualService) InitService(source InsightsSource, fallbackCapacityWatts float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.source = source
	if fallbackCapacityWatts > 0 {
		s.defaultCapacityWatts = fallbackCapacityWatts
	}
}

// RenderLocation clears the current shapes, fetches insights for the given
// point and rebuilds the visualization. A request that is superseded by a
// newer one while fetching returns ErrSuperseded and leaves the newer
// request's state untouched.
func (s *VisualService) RenderLocation(ctx context.Context, location model.LatLng) error {
	// Previous shapes are cleared before the fetch goes out. The generation
	// is taken inside the same critical section as the clear, so a request
	// that clears is the newest request at that moment and can never wipe
	// state a newer request committed.
	s.mutex.Lock()
	gen := s.generation.Add(1)
	s.clearShapesLocked()
	s.insights = nil
	s.mutex.Unlock()

	insights, err := s.source.GetInsights(ctx, location)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if gen != s.generation.Load() {
		return ErrSuperseded
	}

	s.insights = insights
	if insights.SolarPotential.PanelCapacityWatts > 0 {
		s.defaultCapacityWatts = insights.SolarPotential.PanelCapacityWatts
	}
	s.capacityWatts = s.defaultCapacityWatts

	// Default to the largest configuration (full panel array)
	s.configIndex = len(insights.SolarPotential.SolarPanelConfigs) - 1
	if s.configIndex < 0 {
		s.configIndex = 0
	}

	if err := s.rebuildLocked(); err != nil {
		return err
	}

	log.Printf("Rendered %s: %d shapes, config %d of %d",
		insights.Name, len(s.shapes), s.configIndex+1,
		len(insights.SolarPotential.SolarPanelConfigs))
	return nil
}

// SetParameters selects a panel configuration and capacity, then rebuilds the
// shapes with energy values scaled by capacity / default capacity.
func (s *VisualService) SetParameters(configIndex int, capacityWatts float64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.insights == nil {
		return errors.New("no building rendered yet")
	}

	configs := s.insights.SolarPotential.SolarPanelConfigs
	if configIndex < 0 || configIndex >= len(configs) {
		return fmt.Errorf("config index %d out of range, building has %d configs",
			configIndex, len(configs))
	}

	s.configIndex = configIndex
	if capacityWatts > 0 {
		s.capacityWatts = capacityWatts
	}

	return s.rebuildLocked()
}

// SetFilter replaces the visibility filter and recomputes visibility for all
// shapes in one synchronous pass. Shapes are not rebuilt.
func (s *VisualService) SetFilter(filter Filter) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.filter = filter
	s.applyVisibilityLocked()
}

// Shapes returns the current shapes
func (s *VisualService) Shapes() []*model.Shape {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]*model.Shape, len(s.shapes))
	copy(result, s.shapes)
	return result
}

// Insights returns the currently rendered building insights, or nil
func (s *VisualService) Insights() *model.BuildingInsights {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.insights
}

// Parameters returns the selected config index and capacity in watts
func (s *VisualService) Parameters() (int, float64) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.configIndex, s.capacityWatts
}

// CapacityRatio returns the factor applied to raw yield figures
func (s *VisualService) CapacityRatio() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.capacityRatioLocked()
}

// SegmentAt returns the index of the roof segment whose bounding polygon
// contains the given point
func (s *VisualService) SegmentAt(lat, lng float64) (int, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	point := rtreego.Point{lng, lat}
	rect, _ := rtreego.NewRect(point, []float64{1e-9, 1e-9})

	for _, spatial := range s.segmentIndex.SearchIntersect(rect) {
		segment := spatial.(*model.SegmentSpatial)
		if planar.RingContains(segment.Shape.Ring, orb.Point{lng, lat}) {
			return segment.SegmentIndex, true
		}
	}
	return 0, false
}

func (s *VisualService) capacityRatioLocked() float64 {
	if s.defaultCapacityWatts <= 0 || s.capacityWatts <= 0 {
		return 1
	}
	return s.capacityWatts / s.defaultCapacityWatts
}

func (s *VisualService) clearShapesLocked() {
	s.shapes = nil
	s.shapeSegments = make(map[string]int)
	s.segmentIndex = rtreego.NewTree(2, 25, 50)
}

// rebuildLocked recomputes every shape from the current insights and
// parameters. Caller holds the write lock.
func (s *VisualService) rebuildLocked() error {
	s.clearShapesLocked()

	potential := s.insights.SolarPotential
	panels, err := s.insights.PanelsForConfig(s.configIndex)
	if err != nil {
		return err
	}

	ratio := s.capacityRatioLocked()

	// Color domain over the displayed panels' scaled yields
	minEnergy, maxEnergy := 0.0, 0.0
	for i, panel := range panels {
		scaled := panel.YearlyEnergyDcKwh * ratio
		if i == 0 || scaled < minEnergy {
			minEnergy = scaled
		}
		if i == 0 || scaled > maxEnergy {
			maxEnergy = scaled
		}
	}

	halfWidth := potential.PanelWidthMeters / 2
	halfHeight := potential.PanelHeightMeters / 2

	segmentMembers := make(map[int][]model.LatLng)

	for i, panel := range panels {
		if panel.SegmentIndex < 0 || panel.SegmentIndex >= len(potential.RoofSegmentStats) {
			return fmt.Errorf("panel %d references segment %d, building has %d segments",
				i, panel.SegmentIndex, len(potential.RoofSegmentStats))
		}
		segment := potential.RoofSegmentStats[panel.SegmentIndex]

		rotation := geometry.PanelRotation(panel.Orientation, segment.AzimuthDegrees)
		ring, err := geometry.PanelRing(panel.Center, halfWidth, halfHeight, rotation)
		if err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}

		scaled := panel.YearlyEnergyDcKwh * ratio
		shape := &model.Shape{
			ID:           util.ShortUUID(),
			Kind:         model.ShapeKindPanel,
			SegmentIndex: panel.SegmentIndex,
			Ring:         ring,
			ColorIndex:   palette.ColorIndex(scaled, minEnergy, maxEnergy),
			EnergyKwh:    scaled,
		}

		s.shapes = append(s.shapes, shape)
		s.shapeSegments[shape.ID] = panel.SegmentIndex
		segmentMembers[panel.SegmentIndex] = append(segmentMembers[panel.SegmentIndex], panel.Center)
	}

	for idx, segment := range potential.RoofSegmentStats {
		ring, ok, err := geometry.SegmentRing(segment.Center, segment.AzimuthDegrees, segmentMembers[idx])
		if err != nil {
			return fmt.Errorf("segment %d: %w", idx, err)
		}
		if !ok {
			// Segments with no displayed panels produce no bounding polygon
			continue
		}

		shape := &model.Shape{
			ID:           util.ShortUUID(),
			Kind:         model.ShapeKindSegment,
			SegmentIndex: idx,
			Ring:         ring,
		}

		s.shapes = append(s.shapes, shape)
		s.shapeSegments[shape.ID] = idx
		s.segmentIndex.Insert(&model.SegmentSpatial{
			SegmentIndex: idx,
			BoundingBox:  ring.Bound(),
			Shape:        shape,
		})
	}

	s.applyVisibilityLocked()
	return nil
}

// applyVisibilityLocked recomputes visibility for all shapes through the
// shape -> segment side table
func (s *VisualService) applyVisibilityLocked() {
	for _, shape := range s.shapes {
		shape.Visible = s.filter.Visible(s.shapeSegments[shape.ID])
	}
}
