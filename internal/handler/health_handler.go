package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"authportal/internal/service"
)

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	health service.HealthService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(health service.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health godoc
// @Summary Health check
// @Description Opens a fresh database connection and reports whether it succeeded.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	status := h.health.Check(c.Request().Context())
	if !status.Healthy {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Database: status.Database})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Database: status.Database})
}
