package places

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/itinera/internal/metrics"
	"github.com/UnknownOlympus/itinera/internal/models"
	"github.com/redis/go-redis/v9"
)

// Cache is the subset of the redis client used to keep place details.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Cached keeps Details results in redis. Autocomplete and photos are not cached.
// Cache failures are logged and never fail a request.
type Cached struct {
	next    Client
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewCached decorates next with a details cache whose entries expire after ttl.
func NewCached(next Client, cache Cache, ttl time.Duration, m *metrics.Metrics, log *slog.Logger) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, metrics: m, log: log}
}

func cacheKey(placeID string) string {
	return "place:" + placeID
}

func (c *Cached) Autocomplete(ctx context.Context, input string) ([]models.Prediction, error) {
	return c.next.Autocomplete(ctx, input)
}

func (c *Cached) Details(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	key := cacheKey(placeID)

	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var details models.PlaceDetails
		if err = json.Unmarshal(raw, &details); err == nil {
			c.metrics.CacheLookups.WithLabelValues("hit").Inc()
			return &details, nil
		}
		c.log.WarnContext(ctx, "Dropping unreadable cache entry", "key", key, "error", err)
		c.metrics.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		c.log.WarnContext(ctx, "Failed to read place cache", "key", key, "error", err)
		c.metrics.CacheLookups.WithLabelValues("error").Inc()
	}

	details, err := c.next.Details(ctx, placeID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(details)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to encode place for cache", "key", key, "error", err)
		return details, nil
	}

	if err = c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "Failed to write place cache", "key", key, "error", err)
	}

	return details, nil
}

func (c *Cached) Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (*models.Photo, error) {
	return c.next.Photo(ctx, ref, maxWidth, maxHeight)
}
