package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/contentflow/internal/repository"
)

type PostHandler struct {
	pr repository.PostRepository
}

func NewPostHandler(pr repository.PostRepository) *PostHandler {
	return &PostHandler{pr: pr}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	status := c.Query("status")

	var err error
	posts, err := h.listPosts(c, status)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"posts": posts,
	})
}

func (h *PostHandler) listPosts(c *fiber.Ctx, status string) (any, error) {
	if status == "" {
		return h.pr.List(c.Context())
	}
	return h.pr.ListByStatus(c.Context(), status)
}
