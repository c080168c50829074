package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/tradebot/core/config"
)

type appFunc func(ctx context.Context) error

func (f appFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunPassesConfigPath(t *testing.T) {
	t.Setenv("TRADEBOT_TEST_CONFIG", "custom.yaml")
	var gotPath string
	ran := false
	err := Run(Options{
		ConfigEnvVar:      "TRADEBOT_TEST_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			gotPath = path
			return &coreconfig.Config{}, nil
		},
		Bootstrap: func(*coreconfig.Config) (App, error) {
			return appFunc(func(context.Context) error { ran = true; return nil }), nil
		},
		ShutdownLogger: func() error { return nil },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotPath != "custom.yaml" {
		t.Fatalf("config path = %q", gotPath)
	}
	if !ran {
		t.Fatal("app was not run")
	}
}

func TestRunStopsOnLoadError(t *testing.T) {
	boom := errors.New("bad config")
	err := Run(Options{
		LoadConfig: func(string) (*coreconfig.Config, error) { return nil, boom },
		Bootstrap: func(*coreconfig.Config) (App, error) {
			t.Fatal("bootstrap must not run")
			return nil, nil
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunRequiresHooks(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatal("expected error without LoadConfig")
	}
}
