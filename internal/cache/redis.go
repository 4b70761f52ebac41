package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tripnav/internal/model"
)

const redisPrefix = "itin:"

// Redis implements Cache over a shared Redis, so several API nodes see the
// same snapshots and evictions. Any Redis error degrades to a miss; the read
// path then falls through to the store.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{rdb: redis.NewClient(opt)}, nil
}

func (c *Redis) Get(tripID string, day int) ([]model.ItineraryEntry, bool) {
	ctx, cancel := opCtx()
	defer cancel()
	data, err := c.rdb.Get(ctx, redisPrefix+key(tripID, day)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []model.ItineraryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *Redis) Put(tripID string, day int, entries []model.ItineraryEntry, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	ctx, cancel := opCtx()
	defer cancel()
	if err := c.rdb.Set(ctx, redisPrefix+key(tripID, day), data, ttl).Err(); err != nil {
		log.Printf("cache: redis put failed: %v", err)
	}
}

func (c *Redis) Evict(tripID string, day int) {
	ctx, cancel := opCtx()
	defer cancel()
	if err := c.rdb.Del(ctx, redisPrefix+key(tripID, day)).Err(); err != nil {
		log.Printf("cache: redis evict failed: %v", err)
	}
}

func (c *Redis) EvictAll() {
	ctx, cancel := opCtx()
	defer cancel()
	iter := c.rdb.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache: redis scan failed: %v", err)
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			log.Printf("cache: redis evict-all failed: %v", err)
		}
	}
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}
