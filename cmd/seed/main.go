package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"solarscope/internal/config"
	"solarscope/internal/model"
	"solarscope/internal/postgres"
	"solarscope/internal/util"
)

// seed loads a building-insights JSON file into PostgreSQL so the service can
// serve the building without a Solar API key (offline development).
func main() {
	file := flag.String("file", "", "path to a building insights JSON file")
	lat := flag.Float64("lat", math.NaN(), "lookup latitude the snapshot answers for")
	lng := flag.Float64("lng", math.NaN(), "lookup longitude the snapshot answers for")
	flag.Parse()

	if *file == "" || math.IsNaN(*lat) || math.IsNaN(*lng) {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	payload, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	var insights model.BuildingInsights
	if err := json.Unmarshal(payload, &insights); err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}
	if err := insights.Validate(); err != nil {
		log.Fatalf("Invalid insights in %s: %v", *file, err)
	}

	db := postgres.Init(cfg.DBUrl)

	snapshot := postgres.InsightsPG{
		ID:   util.ShortUUID(),
		Name: insights.Name,
		Lat:  math.Round(*lat*1e6) / 1e6,
		Lng:  math.Round(*lng*1e6) / 1e6,

		Payload: string(payload),
		ImageryDate: fmt.Sprintf("%04d-%02d-%02d",
			insights.ImageryDate.Year, insights.ImageryDate.Month, insights.ImageryDate.Day),
	}

	if err := db.Create(&snapshot).Error; err != nil {
		log.Fatalf("Failed to store snapshot: %v", err)
	}

	log.Printf("Stored %s as snapshot %s for (%f, %f)", insights.Name, snapshot.ID, *lat, *lng)
	if err := postgres.Close(); err != nil {
		log.Printf("Error closing PostgreSQL connection: %v", err)
	}
}
