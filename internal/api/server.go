package api

import (
	"log"

	"tripnav/internal/cache"
	"tripnav/internal/config"
	"tripnav/internal/itinerary"
	"tripnav/internal/store"
)

type Server struct {
	Store     store.Store
	Cache     cache.Cache
	Itinerary *itinerary.Service
	Optimizer *itinerary.Optimizer
	Broker    EventBroker
}

// NewServer wires storage, cache, and broker from cfg. Without a
// DATABASE_URL it runs on the in-memory store; without a REDIS_URL the cache
// and broker are in-process.
func NewServer(cfg config.Config) (*Server, error) {
	var st store.Store
	if cfg.DatabaseURL == "" {
		st = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := sp.MigrateDir("db/migrations"); err != nil {
				log.Printf("migrate: %v", err)
			}
		}
		st = sp
	}

	var c cache.Cache
	var broker EventBroker
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		c = rc
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		c = cache.NewMemory()
		broker = NewBroker()
	}

	svc := itinerary.NewService(st, c, cfg.CacheTTL())
	return &Server{
		Store:     st,
		Cache:     c,
		Itinerary: svc,
		Optimizer: itinerary.NewOptimizer(st, c),
		Broker:    broker,
	}, nil
}
