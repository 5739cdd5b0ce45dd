package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-messaging/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Message: "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), requestIDFromContext(c), c.GetHeader("X-User-ID"), "audit_test", "", "ok")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
