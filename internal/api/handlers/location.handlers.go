package routes

import (
	"errors"
	"log"

	"solarscope/internal/model"
	"solarscope/internal/service/insights"
	"solarscope/internal/service/visual"
	"solarscope/internal/solarapi"

	"github.com/gin-gonic/gin"
)

// LocationRequest is the body of a render-location call
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// SetupLocationHandlers registers the location rendering endpoints
func SetupLocationHandlers(router *gin.RouterGroup) {
	router.POST("/location", RenderLocation)
	router.GET("/insights", GetInsights)
	router.GET("/shapes", GetShapes)
}

// RenderLocation fetches building insights for a point and rebuilds the
// visualization
func RenderLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"status": "error", "message": err.Error()})
		return
	}

	lat, lng := *req.Latitude, *req.Longitude
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		c.JSON(400, gin.H{"status": "error", "message": "coordinates out of range"})
		return
	}

	location := model.LatLng{Latitude: lat, Longitude: lng}
	err := visual.GetVisualService().RenderLocation(c.Request.Context(), location)
	if err != nil {
		renderFetchError(c, err)
		return
	}

	log.Printf("Rendered location (%f, %f)", lat, lng)
	c.JSON(200, gin.H{
		"status": "success",
		"shapes": len(visual.GetVisualService().Shapes()),
	})
}

// GetInsights returns the currently rendered building insights
func GetInsights(c *gin.Context) {
	current := visual.GetVisualService().Insights()
	if current == nil {
		c.JSON(404, gin.H{"status": "error", "message": "no building rendered"})
		return
	}
	c.JSON(200, current)
}

// GetShapes returns the current shapes with their visibility flags
func GetShapes(c *gin.Context) {
	c.JSON(200, gin.H{
		"shapes": visual.GetVisualService().Shapes(),
	})
}

// renderFetchError maps fetch failures to API responses, passing upstream
// Solar API errors through verbatim
func renderFetchError(c *gin.Context, err error) {
	var reqErr *solarapi.RequestError
	switch {
	case errors.As(err, &reqErr):
		c.JSON(502, gin.H{
			"status":    "error",
			"code":      reqErr.Code,
			"apiStatus": reqErr.Status,
			"message":   reqErr.Message,
		})
	case errors.Is(err, visual.ErrSuperseded):
		c.JSON(409, gin.H{"status": "discarded", "message": err.Error()})
	case errors.Is(err, insights.ErrFetchInProgress):
		c.JSON(429, gin.H{"status": "error", "message": err.Error()})
	default:
		log.Printf("Render failed: %v", err)
		c.JSON(500, gin.H{"status": "error", "message": err.Error()})
	}
}
