package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles the liveness probe.
type HealthHandler struct{}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /health. Once the process is serving, it is
// healthy: models are warmed before the listener starts.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
}
