package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docsight/internal/config"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	databricks *config.DatabricksConfig
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(databricks *config.DatabricksConfig) *HealthHandler {
	return &HealthHandler{databricks: databricks}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if !h.databricks.Ready() {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "databricks warehouse not configured"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
