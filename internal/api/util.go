package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NexxxT-x/TamagotchPy/internal/constants"
)

// queryLimit reads ?limit=N, falling back to def when absent or out of
// range (1..max).
func queryLimit(c *gin.Context, def, max int) int {
	if s := c.Query(constants.QueryLimit); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= max {
			return n
		}
	}
	return def
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
}
