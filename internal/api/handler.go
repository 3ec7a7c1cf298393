package api

import (
	"context"

	"github.com/NexxxT-x/TamagotchPy/internal/arena"
	"github.com/NexxxT-x/TamagotchPy/internal/combat"
	"github.com/NexxxT-x/TamagotchPy/internal/game"
)

// PetReader is the read side of storage used by the HTTP API.
type PetReader interface {
	GetPetByID(ctx context.Context, id string) (*game.Pet, error)
	ListCombatRecords(ctx context.Context, petID string, limit int) ([]game.CombatRecord, error)
}

// LiveCombats reports the combats currently held by the registry.
type LiveCombats interface {
	Stats() arena.Stats
	Combat(sessionID string) (combat.Update, bool)
}

// SocketCounter reports open WebSocket connections, bound to a combat or not.
type SocketCounter interface {
	Connections() int
}

// ArenaHandler groups the read-only HTTP handlers.
type ArenaHandler struct {
	repo    PetReader
	live    LiveCombats
	sockets SocketCounter
}

func NewArenaHandler(repo PetReader, live LiveCombats, sockets SocketCounter) *ArenaHandler {
	return &ArenaHandler{repo: repo, live: live, sockets: sockets}
}
