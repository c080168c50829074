package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/m3rciful/tradebot/core/logger"
)

// ErrCacheMiss is returned by PairCache.Get when nothing is stored.
var ErrCacheMiss = errors.New("exchange: cache miss")

// PairCache stores the serialized pair list.
type PairCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements PairCache on a go-redis client.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache namespaces every key with prefix.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// cachedExchange serves ListTradablePairs from a PairCache. A broken cache
// degrades to direct exchange calls.
type cachedExchange struct {
	Exchange
	cache PairCache
	key   string
	ttl   time.Duration
}

// WithPairCache decorates ex so the pair list is fetched at most once per ttl
// across every process sharing cache. baseURL scopes the key so testnet and
// production lists never mix.
func WithPairCache(ex Exchange, cache PairCache, baseURL string, ttl time.Duration) Exchange {
	if cache == nil || ttl <= 0 {
		return ex
	}
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return &cachedExchange{Exchange: ex, cache: cache, key: "pairs:" + host, ttl: ttl}
}

func (c *cachedExchange) ListTradablePairs(ctx context.Context) ([]Pair, error) {
	data, err := c.cache.Get(ctx, c.key)
	switch {
	case err == nil:
		var pairs []Pair
		jsonErr := json.Unmarshal(data, &pairs)
		if jsonErr == nil {
			logger.Debug(ctx, "cache", "pairs.hit", slog.String("cache", "hit"), slog.Int("count", len(pairs)))
			return pairs, nil
		}
		logCacheError(ctx, "pairs.decode", jsonErr)
	case !errors.Is(err, ErrCacheMiss):
		logCacheError(ctx, "pairs.get", err)
	}

	pairs, err := c.Exchange.ListTradablePairs(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(pairs); err == nil {
		if err := c.cache.Set(ctx, c.key, data, c.ttl); err != nil {
			logCacheError(ctx, "pairs.set", err)
		}
	}
	logger.Debug(ctx, "cache", "pairs.miss", slog.String("cache", "miss"), slog.Int("count", len(pairs)))
	return pairs, nil
}

func logCacheError(ctx context.Context, event string, err error) {
	logger.Warn(ctx, "cache", event,
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}
