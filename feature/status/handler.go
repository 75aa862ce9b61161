package status

import (
	"strconv"

	"gearsync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the sync status API.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync status routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Get("/history", h.HandleHistory)
	group.Post("/run", h.HandleRun)
}

// HandleStatus returns the driver state and the latest cycle results.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Snapshot())
}

// HandleHistory returns recent cycle records from the audit store.
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	records, err := h.service.History(c.Context(), limit)
	if err != nil {
		l := logger.WithRayID(h.service.logger, c)
		l.Error("Failed to load cycle history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load cycle history",
		})
	}

	return c.JSON(fiber.Map{"results": records})
}

// HandleRun triggers one sync cycle. Returns 409 when a cycle is already
// running.
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Manual sync cycle triggered")

	results, ok := h.service.RunCycle(c.Context())
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a sync cycle is already running",
		})
	}

	return c.JSON(fiber.Map{"results": results})
}
