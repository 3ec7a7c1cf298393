package main

import (
	"fmt"
	"os"

	"github.com/NexxxT-x/TamagotchPy/internal/config"
	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
	"github.com/NexxxT-x/TamagotchPy/internal/storage"
	"github.com/NexxxT-x/TamagotchPy/internal/version"
)

// CLI is the command tree. Flags override the ARENA_* environment.
type CLI struct {
	Config   string `help:"Path to the JSON config file (default $ARENA_CONFIG)."`
	DB       string `help:"SQLite database path (default $ARENA_DB)."`
	Addr     string `help:"Listen address (default $ARENA_ADDR, then server.address)."`
	LogLevel string `help:"Log level: debug, info, warn, error (default $ARENA_LOG_LEVEL)."`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the combat server."`
	Decay   DecayCmd   `cmd:"" help:"Apply one hunger/happiness decay pass and exit."`
	Version VersionCmd `cmd:"" help:"Print build information."`

	env config.Env `kong:"-"`
}

// AfterApply merges the environment under the flags and sets up logging.
func (c *CLI) AfterApply() error {
	env, err := config.ParseEnv()
	if err != nil {
		return err
	}
	if c.Config != "" {
		env.ConfigPath = c.Config
	}
	if c.DB != "" {
		env.DBPath = c.DB
	}
	if c.Addr != "" {
		env.Addr = c.Addr
	}
	if c.LogLevel != "" {
		env.LogLevel = c.LogLevel
	}
	c.env = env
	logging.Init(os.Stderr, env.LogLevel)
	return nil
}

func (c *CLI) loadConfig() (*config.LoadedConfig, error) {
	cfg, err := config.LoadConfig(c.env.ConfigPath)
	if err != nil {
		return nil, err
	}
	logging.Info("configuration loaded", logging.Fields{
		constants.LogFieldPath: c.env.ConfigPath,
		"items":                len(cfg.Items),
		"seed_pets":            len(cfg.Pets),
	})
	return cfg, nil
}

func (c *CLI) openRepository(cfg *config.LoadedConfig) (storage.Repository, func(), error) {
	db, err := storage.OpenAndMigrate(c.env.DBPath, cfg.Pets)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", c.env.DBPath, err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return storage.NewSQLiteRepository(db), closeDB, nil
}

type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Println(version.Info(constants.ServiceName).String())
	return nil
}
