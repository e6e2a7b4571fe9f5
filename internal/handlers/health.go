package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler reports service and dependency status
type HealthHandler struct {
	db          *gorm.DB // nil when running on the memory store
	storageType string
	smsEnabled  bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, storageType string, smsEnabled bool) *HealthHandler {
	return &HealthHandler{
		db:          db,
		storageType: storageType,
		smsEnabled:  smsEnabled,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK
	dbHealthy := true

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.Ping() != nil {
			status = "unhealthy"
			statusCode = fiber.StatusServiceUnavailable
			dbHealthy = false
		}
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"storage": h.storageType,
		"services": fiber.Map{
			"database": dbHealthy,
			"sms":      h.smsEnabled,
		},
	})
}
