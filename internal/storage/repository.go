package storage

import (
	"context"

	"github.com/NexxxT-x/TamagotchPy/internal/game"
)

// PetResult is what a finished combat writes back to one pet.
type PetResult struct {
	PetID string
	// Health is the final health; it is capped at the pet's max_health.
	Health int
	// Items holds the remaining quantity for every item the pet brought
	// into the match. Keys not present are left untouched.
	Items     map[string]int
	Won       bool
	Lost      bool
	Forfeited bool
}

type Repository interface {
	GetPetByID(ctx context.Context, id string) (*game.Pet, error)
	CreatePet(ctx context.Context, p *game.Pet) error
	CountPets(ctx context.Context) (int64, error)
	// SavePetResult applies health, inventory and battle counters in one
	// transaction.
	SavePetResult(ctx context.Context, r PetResult) error
	// SaveCombatRecord stores a finished match. Saving the same session id
	// twice keeps the first record.
	SaveCombatRecord(ctx context.Context, rec *game.CombatRecord) error
	// ListCombatRecords returns the newest records the pet took part in.
	ListCombatRecords(ctx context.Context, petID string, limit int) ([]game.CombatRecord, error)
	// DecayNeeds lowers hunger and happiness of every pet whose hunger and
	// happiness are both above zero, clamping at zero. It returns the
	// number of pets updated.
	DecayNeeds(ctx context.Context, hunger, happiness int) (int64, error)
}
