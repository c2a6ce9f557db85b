package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/contentflow/internal/coordinator"
)

type RunHandler struct {
	c *coordinator.Coordinator
}

func NewRunHandler(c *coordinator.Coordinator) *RunHandler {
	return &RunHandler{c: c}
}

// TriggerRun executes one full pass (pending posts, then the retry queue)
// without waiting for the next scheduled tick.
func (h *RunHandler) TriggerRun(c *fiber.Ctx) error {
	if err := h.c.ProcessPendingPosts(c.Context()); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.c.ProcessRetryQueue(c.Context()); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "completed",
	})
}
