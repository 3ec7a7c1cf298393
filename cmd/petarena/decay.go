package main

import (
	"context"

	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
	"github.com/NexxxT-x/TamagotchPy/internal/service"
)

type DecayCmd struct{}

func (DecayCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	repo, closeDB, err := cli.openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := service.RunDecay(context.Background(), repo, cfg.Decay)
	if err != nil {
		return err
	}
	logging.Info("stat decay applied", logging.Fields{constants.LogFieldRows: n})
	return nil
}
