package service

import (
	"context"
	"fmt"
	"time"

	"github.com/NexxxT-x/TamagotchPy/internal/config"
	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
)

type DecayRepo interface {
	DecayNeeds(ctx context.Context, hunger, happiness int) (int64, error)
}

// RunDecay applies one decay pass and returns the number of pets touched.
func RunDecay(ctx context.Context, repo DecayRepo, cfg config.DecayConfig) (int64, error) {
	n, err := repo.DecayNeeds(ctx, cfg.Hunger, cfg.Happiness)
	if err != nil {
		return 0, fmt.Errorf("decay needs: %w", err)
	}
	return n, nil
}

// RunDecayLoop runs RunDecay every cfg.Interval until ctx is done. A failed
// pass is logged and the loop keeps going.
func RunDecayLoop(ctx context.Context, repo DecayRepo, cfg config.DecayConfig) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := RunDecay(ctx, repo, cfg)
			if err != nil {
				logging.Error("stat decay failed", err, nil)
				continue
			}
			logging.Debug("stat decay applied", logging.Fields{constants.LogFieldRows: n})
		}
	}
}
