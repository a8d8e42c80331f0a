package challenge

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the challenge feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the challenge feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RequestChallenge issues a new proof-of-work challenge.
func (h *Handler) RequestChallenge(c *fiber.Ctx) error {
	ch, err := h.service.Issue()
	if err != nil {
		return fmt.Errorf("failed to issue challenge: %w", err)
	}
	return c.JSON(ch)
}
