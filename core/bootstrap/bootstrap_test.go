package bootstrap

import (
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"

	coreconfig "github.com/m3rciful/tradebot/core/config"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunSkipsCacheWithoutAddress(t *testing.T) {
	called := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		ConnectCache: func(coreconfig.CacheConfig) (*redis.Client, error) {
			called = true
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if called || res.Redis != nil {
		t.Fatal("cache must not be connected without an address")
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRunPropagatesCacheError(t *testing.T) {
	boom := errors.New("refused")
	_, err := Run(Options{
		Config:       &coreconfig.Config{Cache: coreconfig.CacheConfig{RedisAddr: "127.0.0.1:1"}},
		LoggerInit:   noLogger,
		ConnectCache: func(coreconfig.CacheConfig) (*redis.Client, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
