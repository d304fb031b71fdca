package worker

import (
	"log"
	"time"

	"solarscope/internal/config"
	"solarscope/internal/service/insights"
)

// StartPersistenceWorkers starts the workers that flush dirty building
// insights to Redis and PostgreSQL
func StartPersistenceWorkers() {
	insightsService := insights.GetInsightsService()

	redisTicker := time.NewTicker(config.RedisBackupInterval)
	go func() {
		for range redisTicker.C {
			insightsService.FlushToRedis()
		}
	}()
	log.Println("Redis persistence worker started with interval:", config.RedisBackupInterval)

	pgTicker := time.NewTicker(config.PostgresBackupInterval)
	go func() {
		for range pgTicker.C {
			insightsService.FlushToPostgres()
		}
	}()
	log.Println("Postgres persistence worker started with interval:", config.PostgresBackupInterval)
}
