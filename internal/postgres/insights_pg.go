package postgres

import (
	"time"

	"gorm.io/gorm"
)

// InsightsPG is the GORM model for a cached building-insights snapshot.
// Payload holds the full Solar API response as JSON; Lat/Lng are the lookup
// coordinates the snapshot was fetched for.
type InsightsPG struct {
	ID   string  `gorm:"primaryKey"`
	Name string  `gorm:"size:255;not null;index"`
	Lat  float64 `gorm:"not null;uniqueIndex:idx_insights_location"`
	Lng  float64 `gorm:"not null;uniqueIndex:idx_insights_location"`

	Payload     string `gorm:"type:jsonb;not null"`
	ImageryDate string `gorm:"size:32"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the table name
func (InsightsPG) TableName() string {
	return "building_insights"
}
