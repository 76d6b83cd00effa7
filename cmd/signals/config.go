package main

import (
	"fmt"

	"github.com/newthinker/cryptosignals/internal/app"
	"github.com/newthinker/cryptosignals/internal/config"
	"go.uber.org/zap"
)

func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newApp(log *zap.Logger) (*app.App, *config.Config, error) {
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("creating app: %w", err)
	}
	return a, cfg, nil
}
