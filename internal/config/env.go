package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process settings read from the environment.
type Env struct {
	ConfigPath   string `env:"ARENA_CONFIG" envDefault:"./arena_config.json"`
	DBPath       string `env:"ARENA_DB" envDefault:"./data/arena.db"`
	Addr         string `env:"ARENA_ADDR"`
	LogLevel     string `env:"ARENA_LOG_LEVEL" envDefault:"info"`
	OTelEndpoint string `env:"ARENA_OTEL_ENDPOINT"`
}

// ParseEnv reads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// ResolveAddress picks the listen address: environment first, then config.
func (e Env) ResolveAddress(cfg *LoadedConfig) string {
	if e.Addr != "" {
		return e.Addr
	}
	if cfg != nil && cfg.ServerAddress != "" {
		return cfg.ServerAddress
	}
	return defaultAddress
}
