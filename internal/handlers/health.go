package handlers

import (
	"github.com/gmbs/interventions-api/internal/config"
	"github.com/gmbs/interventions-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles health check routes
type HealthHandler struct {
	Config *config.Config
	DB     *gorm.DB
}

// Check handles GET /health
// @Summary Service health
// @Description Reports service and database health
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Config, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
