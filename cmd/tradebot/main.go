package main

import (
	"log"

	"github.com/m3rciful/tradebot/core/bootstrap"
	"github.com/m3rciful/tradebot/core/cmd"
	coreconfig "github.com/m3rciful/tradebot/core/config"
	"github.com/m3rciful/tradebot/internal/bot"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        coreconfig.Load,
		Bootstrap:         newApp,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func newApp(cfg *coreconfig.Config) (cmd.App, error) {
	infra, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	app, err := bot.New(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return app, nil
}
