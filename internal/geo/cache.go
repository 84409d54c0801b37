package geo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "jobmatch:geocode:"

// DefaultCacheTTL keeps resolved coordinates for a month
const DefaultCacheTTL = 30 * 24 * time.Hour

// CachedGeocoder keeps resolved coordinates in Redis in front of another Geocoder.
// A Redis outage only costs the cache; lookups fall through to the wrapped geocoder.
type CachedGeocoder struct {
	next   Geocoder
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedGeocoder wraps next with a Redis cache
func NewCachedGeocoder(next Geocoder, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedGeocoder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Resolve returns cached coordinates when present, otherwise asks the wrapped geocoder
// and stores a successful answer.
func (c *CachedGeocoder) Resolve(ctx context.Context, location string) (Coordinates, error) {
	key := cacheKeyPrefix + normalizeLocation(location)

	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if coords, perr := ParseCoordinates(val); perr == nil {
			return coords, nil
		}
		c.logger.Warn("dropping malformed cached coordinates", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
	}

	coords, err := c.next.Resolve(ctx, location)
	if err != nil {
		return Coordinates{}, err
	}

	if err := c.rdb.Set(ctx, key, coords.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
	return coords, nil
}
