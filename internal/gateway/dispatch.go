package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/NexxxT-x/TamagotchPy/internal/arena"
	"github.com/NexxxT-x/TamagotchPy/internal/combat"
	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
)

// Errors whose text is safe to show to the requester.
var clientErrors = []error{
	arena.ErrNotFound,
	arena.ErrAlreadyInSession,
	arena.ErrInvalidJoin,
	arena.ErrNoActiveSession,
	arena.ErrSessionFault,
	arena.ErrShuttingDown,
	combat.ErrOutOfTurn,
	combat.ErrInvalidAction,
	combat.ErrNotActive,
	combat.ErrConcluded,
}

func (h *Hub) dispatch(ctx context.Context, connID string, msg []byte) {
	handler := h.currentHandler()
	if handler == nil {
		h.sendError(connID, constants.ErrInternal)
		return
	}
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.sendError(connID, constants.ErrInvalidRequest)
		return
	}

	switch env.Event {
	case constants.EventJoinCombat:
		var req JoinRequest
		if len(env.Data) == 0 || json.Unmarshal(env.Data, &req) != nil || req.PetID == "" || req.OpponentID == "" {
			h.sendError(connID, constants.ErrMalformedJoinPayload)
			return
		}
		if _, err := handler.Join(ctx, connID, req.PetID, req.OpponentID); err != nil {
			h.reportError(connID, env.Event, err)
		}
	case constants.EventCombatAction:
		var req ActionRequest
		if len(env.Data) == 0 || json.Unmarshal(env.Data, &req) != nil || req.Action == nil {
			h.sendError(connID, constants.ErrMalformedAction)
			return
		}
		if _, err := handler.SubmitAction(ctx, connID, *req.Action); err != nil {
			h.reportError(connID, env.Event, err)
		}
	default:
		h.sendError(connID, constants.ErrUnknownEvent)
	}
}

func (h *Hub) reportError(connID, event string, err error) {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			h.sendError(connID, err.Error())
			return
		}
	}
	logging.Error("combat request failed", err, logging.Fields{
		constants.LogFieldConnID: connID,
		constants.LogFieldEvent:  event,
	})
	h.sendError(connID, constants.ErrInternal)
}

func (h *Hub) sendError(connID, message string) {
	h.Send(connID, constants.EventCombatError, ErrorPayload{Message: message})
}
