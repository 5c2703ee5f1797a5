package main

import (
	"log"

	"centavo/internal/domain/recurring"
	"centavo/internal/infrastructure/cache"
	"centavo/internal/infrastructure/postgres"
	httphandlers "centavo/internal/interfaces/http"
	"centavo/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB    *postgres.DB
	Cache *cache.Client

	// Repositories
	LedgerRepo  *postgres.LedgerRepository
	PatternRepo *postgres.PatternRepository

	// Domain services
	Detector    *recurring.Detector
	Projections *recurring.ProjectionService

	// Handlers
	RecurringHandler *httphandlers.RecurringHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	ledgerRepo := postgres.NewLedgerRepository(db)
	patternRepo := postgres.NewPatternRepository(db)

	// Redis is optional; without it projections are computed per request.
	var redisCache *cache.Client
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password)
		if err != nil {
			log.Printf("Warning: Redis unavailable, running without projection cache: %v", err)
			redisCache = nil
		} else {
			log.Println("Connected to Redis")
		}
	}

	var detector *recurring.Detector
	var projections *recurring.ProjectionService
	if redisCache != nil {
		detector = recurring.NewDetectorWithCache(ledgerRepo, patternRepo, redisCache)
		projections = recurring.NewProjectionServiceWithCache(patternRepo, redisCache)
	} else {
		detector = recurring.NewDetector(ledgerRepo, patternRepo)
		projections = recurring.NewProjectionService(patternRepo)
	}

	recurringHandler := httphandlers.NewRecurringHandler(detector, projections, patternRepo)

	return &Dependencies{
		DB:               db,
		Cache:            redisCache,
		LedgerRepo:       ledgerRepo,
		PatternRepo:      patternRepo,
		Detector:         detector,
		Projections:      projections,
		RecurringHandler: recurringHandler,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
