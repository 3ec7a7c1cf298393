package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NexxxT-x/TamagotchPy/internal/constants"
)

// NewRouter mounts the HTTP API and the WebSocket endpoint.
func NewRouter(h *ArenaHandler, ws http.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(constants.RouteHealth, Health)
	router.GET(constants.RouteWebSocket, gin.WrapF(ws))

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, Version)
		apiRoutes.GET(constants.RouteCombatStats, h.CombatStats)
		apiRoutes.GET(constants.RouteCombatByID, h.GetCombat)
		apiRoutes.GET(constants.RoutePetByID, h.GetPet)
		apiRoutes.GET(constants.RoutePetCombats, h.ListPetCombats)
	}
	return router
}
