package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NexxxT-x/TamagotchPy/internal/arena"
	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
)

// GetPet returns a pet with its inventory and battle counters.
func (h *ArenaHandler) GetPet(c *gin.Context) {
	id := strings.TrimSpace(c.Param(constants.ParamPetID))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	p, err := h.repo.GetPetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrPetNotFound})
			return
		}
		logging.Error("failed to fetch pet", err, logging.Fields{constants.LogFieldPetID: id})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchPet})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListPetCombats returns the newest finished combats of a pet (?limit=N).
func (h *ArenaHandler) ListPetCombats(c *gin.Context) {
	id := strings.TrimSpace(c.Param(constants.ParamPetID))
	limit := queryLimit(c, constants.DefaultListLimit, constants.MaxListLimit)
	records, err := h.repo.ListCombatRecords(c.Request.Context(), id, limit)
	if err != nil {
		logging.Error("failed to fetch combats", err, logging.Fields{constants.LogFieldPetID: id})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCombats})
		return
	}
	c.JSON(http.StatusOK, records)
}

type statsResponse struct {
	arena.Stats
	Sockets int `json:"sockets"`
}

// CombatStats returns the live session counts of the registry.
func (h *ArenaHandler) CombatStats(c *gin.Context) {
	resp := statsResponse{Stats: h.live.Stats()}
	if h.sockets != nil {
		resp.Sockets = h.sockets.Connections()
	}
	c.JSON(http.StatusOK, resp)
}

// GetCombat returns the current state of a live combat.
func (h *ArenaHandler) GetCombat(c *gin.Context) {
	st, ok := h.live.Combat(strings.TrimSpace(c.Param(constants.ParamSessionID)))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrCombatNotFound})
		return
	}
	c.JSON(http.StatusOK, st)
}
