package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
)

// ForecastCache keeps generated forecasts in Redis so repeated
// dashboard polls within the same hour skip the predictor. Entries
// expire at the next hour boundary, when the forecast anchor moves.
type ForecastCache struct {
	rdb *goredis.Client
	log *logger.Logger
}

func NewForecastCache(addr string, log *logger.Logger) (*ForecastCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ForecastCache{rdb: rdb, log: log}, nil
}

func (c *ForecastCache) Close() error {
	return c.rdb.Close()
}

// Get returns the cached forecast for the given anchor hour, if any.
// Cache errors are logged and treated as misses.
func (c *ForecastCache) Get(ctx context.Context, anchor time.Time) ([]models.ForecastPoint, bool) {
	raw, err := c.rdb.Get(ctx, Key(anchor)).Bytes()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("forecast cache read failed", "error", err)
		return nil, false
	}

	var points []models.ForecastPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		c.log.Warn("forecast cache entry corrupt", "error", err)
		return nil, false
	}
	return points, true
}

// Set stores the forecast for the given anchor hour. Failures are
// logged, never surfaced: the cache is an optimization.
func (c *ForecastCache) Set(ctx context.Context, anchor time.Time, points []models.ForecastPoint) {
	raw, err := json.Marshal(points)
	if err != nil {
		c.log.Warn("forecast cache encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, Key(anchor), raw, TTL(anchor)).Err(); err != nil {
		c.log.Warn("forecast cache write failed", "error", err)
	}
}

// Key builds the cache key for a forecast anchored at the given hour.
func Key(anchor time.Time) string {
	return "forecast:" + anchor.Format("2006-01-02T15")
}

// TTL returns how long a forecast anchored at the given hour stays
// valid: until the next hour boundary, with a one-minute floor.
func TTL(anchor time.Time) time.Duration {
	boundary := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), anchor.Hour(), 0, 0, 0, anchor.Location()).
		Add(time.Hour)
	ttl := time.Until(boundary)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}
