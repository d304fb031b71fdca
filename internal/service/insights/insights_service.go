package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"solarscope/internal/config"
	"solarscope/internal/model"
	pg "solarscope/internal/postgres"
	redis_client "solarscope/internal/redis"
	"solarscope/internal/service/storage"
	"solarscope/internal/util"

	"gorm.io/gorm/clause"
)

// ErrFetchInProgress is returned when a fetch for the same location is
// already in flight
var ErrFetchInProgress = errors.New("building insights fetch already in progress for this location")

// Fetcher resolves a location to building insights (the Solar API client in
// production, a stub in tests)
type Fetcher interface {
	FindClosestBuilding(ctx context.Context, location model.LatLng) (*model.BuildingInsights, error)
}

// InsightsService layers building-insights lookups: memory, then Redis, then
// PostgreSQL, then the Solar API. Fetched entries are marked dirty and flushed
// to the persistent layers by background workers.
type InsightsService struct {
	storage storage.Storage[string, *model.BuildingInsights]
	fetcher Fetcher

	inFlight      map[string]bool
	inFlightMutex sync.Mutex

	initialized bool
	initMutex   sync.RWMutex
}

var (
	insightsServiceInstance *InsightsService
	insightsServiceOnce     sync.Once
)

// GetInsightsService returns the singleton instance of InsightsService
func GetInsightsService() *InsightsService {
	insightsServiceOnce.Do(func() {
		insightsServiceInstance = NewInsightsService(nil)
	})
	return insightsServiceInstance
}

// NewInsightsService creates a standalone service instance (used by tests)
func NewInsightsService(fetcher Fetcher) *InsightsService {
	return &InsightsService{
		storage:  storage.NewMemoryStorage[string, *model.BuildingInsights](),
		fetcher:  fetcher,
		inFlight: make(map[string]bool),
	}
}

// InitService wires the Solar API fetcher into the singleton
func (s *InsightsService) InitService(fetcher Fetcher) {
	s.initMutex.Lock()
	defer s.initMutex.Unlock()

	if s.initialized {
		return
	}

	s.fetcher = fetcher
	s.initialized = true
	log.Println("InsightsService initialized")
}

// GetInsights returns the building insights for a location, walking the cache
// layers and falling back to the Solar API on a full miss.
func (s *InsightsService) GetInsights(ctx context.Context, location model.LatLng) (*model.BuildingInsights, error) {
	key := redis_client.InsightsKey(location.Latitude, location.Longitude)

	if insights, ok := s.storage.Get(key); ok {
		return insights, nil
	}

	if insights := s.loadFromRedis(key); insights != nil {
		s.storeClean(key, insights)
		return insights, nil
	}

	if insights := s.loadFromPG(location); insights != nil {
		s.storeClean(key, insights)
		return insights, nil
	}

	return s.fetchFromAPI(ctx, key, location)
}

// fetchFromAPI calls the Solar API, allowing at most one in-flight request
// per location key
func (s *InsightsService) fetchFromAPI(ctx context.Context, key string, location model.LatLng) (*model.BuildingInsights, error) {
	s.inFlightMutex.Lock()
	if s.inFlight[key] {
		s.inFlightMutex.Unlock()
		return nil, ErrFetchInProgress
	}
	s.inFlight[key] = true
	s.inFlightMutex.Unlock()

	defer func() {
		s.inFlightMutex.Lock()
		delete(s.inFlight, key)
		s.inFlightMutex.Unlock()
	}()

	if s.fetcher == nil {
		return nil, errors.New("insights service has no fetcher configured")
	}

	insights, err := s.fetcher.FindClosestBuilding(ctx, location)
	if err != nil {
		return nil, err
	}

	// Dirty entry: the persistence workers will flush it to Redis and PG
	s.storage.Set(key, insights)
	return insights, nil
}

// storeClean caches an entry loaded from a persistent layer without marking
// it dirty again
func (s *InsightsService) storeClean(key string, insights *model.BuildingInsights) {
	s.storage.Set(key, insights)
	s.storage.ClearDirty([]string{key})
}

// loadFromRedis returns a cached response from Redis, or nil on any miss or
// decode failure
func (s *InsightsService) loadFromRedis(key string) *model.BuildingInsights {
	if redis_client.GetClient() == nil {
		return nil
	}

	payload, err := redis_client.Get(key)
	if err != nil {
		if !redis_client.IsNil(err) {
			log.Printf("Redis lookup failed for %s: %v", key, err)
		}
		return nil
	}

	var insights model.BuildingInsights
	if err := json.Unmarshal([]byte(payload), &insights); err != nil {
		log.Printf("Failed to decode cached insights for %s: %v", key, err)
		return nil
	}
	return &insights
}

// loadFromPG returns the most recent snapshot stored for the location, or nil
func (s *InsightsService) loadFromPG(location model.LatLng) *model.BuildingInsights {
	db := pg.GetDB()
	if db == nil {
		return nil
	}

	var snapshot pg.InsightsPG
	result := db.Where("lat = ? AND lng = ?", roundCoord(location.Latitude), roundCoord(location.Longitude)).
		Order("updated_at DESC").
		First(&snapshot)
	if result.Error != nil {
		return nil
	}

	var insights model.BuildingInsights
	if err := json.Unmarshal([]byte(snapshot.Payload), &insights); err != nil {
		log.Printf("Failed to decode stored insights %s: %v", snapshot.ID, err)
		return nil
	}
	return &insights
}

// FlushToRedis writes all dirty entries to Redis without clearing flags,
// so a later PG flush still sees them.
func (s *InsightsService) FlushToRedis() {
	if redis_client.GetClient() == nil {
		return
	}

	for key, insights := range s.storage.GetDirty() {
		payload, err := json.Marshal(insights)
		if err != nil {
			log.Printf("Failed to encode insights %s: %v", key, err)
			continue
		}
		if err := redis_client.Set(key, payload, config.InsightsCacheTTL); err != nil {
			log.Printf("Failed to cache insights %s: %v", key, err)
		}
	}
}

// FlushToPostgres upserts all dirty entries as snapshots and clears their
// dirty flags.
func (s *InsightsService) FlushToPostgres() {
	db := pg.GetDB()
	if db == nil {
		return
	}

	dirty := s.storage.GetDirty()
	flushed := make([]string, 0, len(dirty))

	for key, insights := range dirty {
		payload, err := json.Marshal(insights)
		if err != nil {
			log.Printf("Failed to encode insights %s: %v", key, err)
			continue
		}

		// The snapshot is keyed by the lookup coordinates, not the building
		// center, so cache-layer lookups agree with Redis
		var lat, lng float64
		if _, err := fmt.Sscanf(key, "insights:%f:%f", &lat, &lng); err != nil {
			log.Printf("Unparseable insights key %q: %v", key, err)
			continue
		}

		snapshot := pg.InsightsPG{
			ID:   util.ShortUUID(),
			Name: insights.Name,
			Lat:  lat,
			Lng:  lng,

			Payload: string(payload),
			ImageryDate: fmt.Sprintf("%04d-%02d-%02d",
				insights.ImageryDate.Year, insights.ImageryDate.Month, insights.ImageryDate.Day),
		}

		// One snapshot per lookup location: refetches replace the stored
		// row instead of accumulating history
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lat"}, {Name: "lng"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "payload", "imagery_date", "updated_at"}),
		}).Create(&snapshot).Error
		if err != nil {
			log.Printf("Failed to persist insights %s: %v", key, err)
			continue
		}
		flushed = append(flushed, key)
	}

	if len(flushed) > 0 {
		s.storage.ClearDirty(flushed)
		log.Printf("Persisted %d building insights snapshots", len(flushed))
	}
}

// roundCoord rounds a coordinate to the cache-key precision (6 decimals)
func roundCoord(v float64) float64 {
	const scale = 1e6
	if v >= 0 {
		return float64(int64(v*scale+0.5)) / scale
	}
	return float64(int64(v*scale-0.5)) / scale
}
