package arena

import (
	"context"

	"github.com/NexxxT-x/TamagotchPy/internal/combat"
	"github.com/NexxxT-x/TamagotchPy/internal/engine"
)

// PetLoader resolves a pet id into a combatant. Implementations return an
// error wrapping ErrNotFound for unknown pets.
type PetLoader interface {
	LoadPet(ctx context.Context, petID string) (engine.Combatant, error)
}

// PetOutcome is what one pet takes away from a finished combat.
type PetOutcome struct {
	SessionID string
	PetID     string
	Health    int
	Items     map[string]int
	Won       bool
	Lost      bool
	Forfeited bool
}

// CombatSummary describes a finished combat for the history log.
type CombatSummary struct {
	SessionID   string
	PetAID      string
	PetBID      string
	VictorPetID string
	Reason      combat.EndReason
	Turns       int
}

// Persister stores combat results. Calls happen in the background after a
// combat concludes; failures are logged and not retried.
type Persister interface {
	PersistPetOutcome(ctx context.Context, out PetOutcome) error
	RecordCombat(ctx context.Context, sum CombatSummary) error
}

// Gateway delivers an event to one connection. Send must not block and must
// not call back into the registry; it is invoked with registry or session
// locks held.
type Gateway interface {
	Send(connID, event string, data any)
}
