package search

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the search feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the search feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Search serves GET /api/search. Every parameter is optional; the
// response is always a JSON array, possibly empty.
func (h *Handler) Search(c *fiber.Ctx) error {
	tracks, err := h.service.Search(
		c.Context(),
		c.Query("q"),
		c.Query("track_name"),
		c.Query("artist_name"),
		c.Query("album_name"),
	)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}
	return c.JSON(tracks)
}
