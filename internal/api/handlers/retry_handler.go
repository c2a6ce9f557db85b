package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/contentflow/internal/repository"
)

type RetryHandler struct {
	rr repository.RetryRepository
}

func NewRetryHandler(rr repository.RetryRepository) *RetryHandler {
	return &RetryHandler{rr: rr}
}

func (h *RetryHandler) ListRetries(c *fiber.Ctx) error {
	items, err := h.rr.List(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"retries": items,
	})
}

// RequeueRetry puts a Failed retry record back in line for one more
// automated attempt. This is the manual follow-up path for exhausted
// retries.
func (h *RetryHandler) RequeueRetry(c *fiber.Ctx) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing retry record id",
		})
	}

	if err := h.rr.Requeue(c.Context(), req.ID); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "requeued",
	})
}
