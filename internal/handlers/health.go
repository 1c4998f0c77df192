package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"navigator/internal/logging"
	"navigator/internal/store"
)

const healthCheckTimeout = 2 * time.Second

// healthProbeID is looked up to exercise the store; it never exists.
const healthProbeID = "__health__"

func Health(users store.UserStore, storeName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/health"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if _, err := users.Exists(ctx, healthProbeID); err != nil {
			logging.Ctx(c.Request.Context()).Warn().Err(err).Str("store", storeName).Msgf("[%s] store unreachable", route)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "store": storeName})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": storeName})
	}
}
