package bootstrap

import (
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/m3rciful/tradebot/core/cache"
	coreconfig "github.com/m3rciful/tradebot/core/config"
	"github.com/m3rciful/tradebot/core/logger"
)

// Options control the bootstrap pipeline. Nil hooks use the defaults.
type Options struct {
	Config *coreconfig.Config

	LoggerInit   func(*coreconfig.Config) error
	ConnectCache func(coreconfig.CacheConfig) (*redis.Client, error)
}

// Result exposes infrastructure initialized by Run.
type Result struct {
	// Redis is nil when no cache is configured.
	Redis *redis.Client
}

// Close releases what Run opened.
func (r *Result) Close() error {
	if r == nil || r.Redis == nil {
		return nil
	}
	return r.Redis.Close()
}

// Run initializes the logger and, when configured, the Redis cache.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	if !cache.Enabled(opts.Config.Cache) {
		return res, nil
	}
	connect := opts.ConnectCache
	if connect == nil {
		connect = cache.Connect
	}
	client, err := connect(opts.Config.Cache)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: cache initialization failed: %w", err)
	}
	res.Redis = client
	return res, nil
}
