package routes

import (
	"log"
	"strconv"

	"solarscope/internal/palette"
	"solarscope/internal/service/visual"

	"github.com/gin-gonic/gin"
)

// ParamsRequest selects a panel configuration and capacity
type ParamsRequest struct {
	ConfigIndex   int     `json:"configIndex"`
	CapacityWatts float64 `json:"capacityWatts"`
}

// VisibilityRequest updates the segment visibility filter. Segments is a
// comma-separated allow-list of segment indices; unparseable tokens are
// ignored.
type VisibilityRequest struct {
	ShowAll  bool   `json:"showAll"`
	Segments string `json:"segments"`
}

// SetupVisualHandlers registers the visualization parameter endpoints
func SetupVisualHandlers(router *gin.RouterGroup) {
	router.POST("/params", SetParameters)
	router.POST("/visibility", SetVisibility)
	router.GET("/segment", GetSegmentAt)
	router.GET("/palette", GetPalette)
}

// SetParameters applies a panel configuration and capacity selection
func SetParameters(c *gin.Context) {
	var req ParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"status": "error", "message": err.Error()})
		return
	}

	svc := visual.GetVisualService()
	if err := svc.SetParameters(req.ConfigIndex, req.CapacityWatts); err != nil {
		c.JSON(400, gin.H{"status": "error", "message": err.Error()})
		return
	}

	configIndex, capacity := svc.Parameters()
	log.Printf("Parameters set: config %d, %g W", configIndex, capacity)
	c.JSON(200, gin.H{
		"status":        "success",
		"configIndex":   configIndex,
		"capacityWatts": capacity,
		"capacityRatio": svc.CapacityRatio(),
	})
}

// SetVisibility replaces the visibility filter and recomputes shape
// visibility
func SetVisibility(c *gin.Context) {
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"status": "error", "message": err.Error()})
		return
	}

	filter := visual.NewFilter(req.ShowAll, visual.ParseSegmentFilter(req.Segments))
	visual.GetVisualService().SetFilter(filter)

	c.JSON(200, gin.H{"status": "success"})
}

// GetSegmentAt returns the roof segment whose bounding polygon contains the
// queried point
func GetSegmentAt(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "message": "invalid lat"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "message": "invalid lng"})
		return
	}

	idx, ok := visual.GetVisualService().SegmentAt(lat, lng)
	if !ok {
		c.JSON(404, gin.H{"status": "error", "message": "no segment at this point"})
		return
	}
	c.JSON(200, gin.H{"segmentIndex": idx})
}

// GetPalette returns a 256-entry color palette by name (iron by default)
func GetPalette(c *gin.Context) {
	seeds, ok := map[string][]string{
		"":         palette.Iron,
		"iron":     palette.Iron,
		"rainbow":  palette.Rainbow,
		"binary":   palette.Binary,
		"sunlight": palette.Sunlight,
	}[c.Query("name")]
	if !ok {
		c.JSON(404, gin.H{"status": "error", "message": "unknown palette"})
		return
	}

	colors, err := palette.Create(seeds)
	if err != nil {
		c.JSON(500, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(200, gin.H{"colors": colors})
}
