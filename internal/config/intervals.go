package config

import "time"

// Worker intervals and cache lifetimes
const (
	// RedisBackupInterval defines how often dirty insights are written to Redis
	RedisBackupInterval = 10 * time.Second

	// PostgresBackupInterval defines how often dirty insights are written to PostgreSQL
	PostgresBackupInterval = 60 * time.Second

	// InsightsCacheTTL is how long a cached Solar API response stays valid in Redis
	InsightsCacheTTL = 24 * time.Hour
)
