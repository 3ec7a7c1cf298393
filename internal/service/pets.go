package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/NexxxT-x/TamagotchPy/internal/arena"
	"github.com/NexxxT-x/TamagotchPy/internal/engine"
	"github.com/NexxxT-x/TamagotchPy/internal/game"
	"github.com/NexxxT-x/TamagotchPy/internal/storage"
)

// PetRepo is the subset of storage.Repository the combat store needs.
type PetRepo interface {
	GetPetByID(ctx context.Context, id string) (*game.Pet, error)
	SavePetResult(ctx context.Context, r storage.PetResult) error
	SaveCombatRecord(ctx context.Context, rec *game.CombatRecord) error
}

// CombatStore connects the arena to storage: it loads pets as combatants
// and writes combat results back.
type CombatStore struct {
	repo PetRepo
}

func NewCombatStore(repo PetRepo) *CombatStore {
	return &CombatStore{repo: repo}
}

// LoadPet snapshots a stored pet. A fainted pet (health 0) enters the
// match at full health.
func (s *CombatStore) LoadPet(ctx context.Context, petID string) (engine.Combatant, error) {
	p, err := s.repo.GetPetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return engine.Combatant{}, fmt.Errorf("pet %s: %w", petID, arena.ErrNotFound)
		}
		return engine.Combatant{}, fmt.Errorf("load pet %s: %w", petID, err)
	}
	return CombatantFromPet(p), nil
}

// CombatantFromPet builds the runtime view of p.
func CombatantFromPet(p *game.Pet) engine.Combatant {
	health := p.Health
	if health <= 0 || health > p.MaxHealth {
		health = p.MaxHealth
	}
	return engine.Combatant{
		PetID: p.ID,
		Name:  p.Name,
		Base: engine.BaseStats{
			Attack:    p.Attack,
			Defense:   p.Defense,
			Speed:     p.Speed,
			MaxHealth: p.MaxHealth,
		},
		Health: health,
		Items:  p.InventoryMap(),
	}
}

func (s *CombatStore) PersistPetOutcome(ctx context.Context, out arena.PetOutcome) error {
	err := s.repo.SavePetResult(ctx, storage.PetResult{
		PetID:     out.PetID,
		Health:    out.Health,
		Items:     out.Items,
		Won:       out.Won,
		Lost:      out.Lost,
		Forfeited: out.Forfeited,
	})
	if err != nil {
		return fmt.Errorf("save result for pet %s: %w", out.PetID, err)
	}
	return nil
}

func (s *CombatStore) RecordCombat(ctx context.Context, sum arena.CombatSummary) error {
	rec := &game.CombatRecord{
		SessionID:   sum.SessionID,
		PetAID:      sum.PetAID,
		PetBID:      sum.PetBID,
		VictorPetID: sum.VictorPetID,
		Reason:      string(sum.Reason),
		Turns:       sum.Turns,
	}
	if err := s.repo.SaveCombatRecord(ctx, rec); err != nil {
		return fmt.Errorf("save combat %s: %w", sum.SessionID, err)
	}
	return nil
}
