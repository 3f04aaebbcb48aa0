// internal/store/address/cache.go
package address

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/common/metrics"
	"registry-matcher/internal/models"
)

// Source resolves address codes to names. Both Store and Cache satisfy it.
type Source interface {
	FetchNames(ctx context.Context, kind models.AddressKind, codes []string) (map[string]string, error)
}

// Cache puts a redis layer in front of the address store. Display names
// change rarely, so a TTL cache is safe; any redis failure degrades to a
// direct store query instead of failing the presenter.
type Cache struct {
	source Source
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(source Source, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		source: source,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"store": "address-cache"}),
	}
}

func cacheKey(kind models.AddressKind, code string) string {
	return fmt.Sprintf("addr:%s:%s", kind, code)
}

func (c *Cache) FetchNames(ctx context.Context, kind models.AddressKind, codes []string) (map[string]string, error) {
	if c.redis == nil || len(codes) == 0 {
		return c.source.FetchNames(ctx, kind, codes)
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = cacheKey(kind, code)
	}

	names := make(map[string]string, len(codes))
	var missing []string

	vals, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("address cache read failed, querying store directly", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
		return c.source.FetchNames(ctx, kind, codes)
	}

	for i, v := range vals {
		if s, ok := v.(string); ok {
			names[codes[i]] = s
			metrics.AddressCacheLookups.WithLabelValues(string(kind), "hit").Inc()
		} else {
			missing = append(missing, codes[i])
			metrics.AddressCacheLookups.WithLabelValues(string(kind), "miss").Inc()
		}
	}

	if len(missing) == 0 {
		return names, nil
	}

	fetched, err := c.source.FetchNames(ctx, kind, missing)
	if err != nil {
		return nil, err
	}

	pipe := c.redis.Pipeline()
	for code, name := range fetched {
		names[code] = name
		pipe.Set(ctx, cacheKey(kind, code), name, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// Cache writes are best effort.
		c.logger.Warn("address cache write failed", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
	}

	return names, nil
}
