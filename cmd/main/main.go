package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"solarscope/internal/api"
	"solarscope/internal/config"
	"solarscope/internal/postgres"
	"solarscope/internal/redis"
	"solarscope/internal/service/insights"
	"solarscope/internal/service/visual"
	"solarscope/internal/solarapi"
	"solarscope/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	setupLogging()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.SolarAPIKey == "" {
		log.Println("SOLAR_API_KEY is not set, Solar API requests will be rejected upstream")
	}

	initializeDatabaseAndCache(cfg)
	defer closeConnections()

	setupSignalHandler()

	initializeServices(cfg)

	worker.StartAllWorkers()

	runAPIServer(cfg)
}

func setupLogging() {
	// Set up logging to file and terminal
	logFile, err := os.OpenFile("solarscope.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	// The file stays open for the whole process lifetime

	// Use MultiWriter to output logs to both terminal and file
	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)
}

func initializeDatabaseAndCache(cfg config.Config) {
	// Initialize PostgreSQL
	postgres.Init(cfg.DBUrl)

	// Initialize Redis
	redis.Init(cfg.RedisUrl)
}

func initializeServices(cfg config.Config) {
	solarClient := solarapi.NewClient(cfg.SolarAPIUrl, cfg.SolarAPIKey)

	insightsService := insights.GetInsightsService()
	insightsService.InitService(solarClient)

	visual.GetVisualService().InitService(insightsService, cfg.PanelCapacityWatts)
}

func runAPIServer(cfg config.Config) {
	// Initialize Gin router
	r := gin.Default()

	// Configure API routes
	routeConfig := map[string]string{
		"port":        cfg.Port,
		"solarApiUrl": cfg.SolarAPIUrl,
	}
	api.SetupRouter(r, routeConfig)

	// Start the server
	r.Run(cfg.Port)
}

func closeConnections() {
	if err := postgres.Close(); err != nil {
		log.Printf("Error closing PostgreSQL connection: %v", err)
	}

	if err := redis.Close(); err != nil {
		log.Printf("Error closing Redis connection: %v", err)
	}

	log.Println("PostgreSQL and Redis connections closed successfully")
}

func setupSignalHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Shutdown signal received, closing connections...")
		closeConnections()
		os.Exit(0)
	}()
}
