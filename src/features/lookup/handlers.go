package lookup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lrclib/lrclib/src/features/hosting"
)

// Handler is the handler for the lookup feature.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler creates a new handler for the lookup feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type getQuery struct {
	TrackName  string   `query:"track_name" validate:"required"`
	ArtistName string   `query:"artist_name" validate:"required"`
	AlbumName  string   `query:"album_name"`
	Duration   *float64 `query:"duration" validate:"omitempty,min=1,max=3600"`
}

// GetByMetadata serves GET /api/get.
func (h *Handler) GetByMetadata(c *fiber.Ctx) error {
	var params getQuery
	if err := c.QueryParser(&params); err != nil {
		return hosting.ErrValidation(err.Error())
	}
	params.TrackName = strings.TrimSpace(params.TrackName)
	params.ArtistName = strings.TrimSpace(params.ArtistName)
	if err := h.validate.Struct(params); err != nil {
		return hosting.ErrValidation(err.Error())
	}

	track, err := h.service.GetByMetadata(c.Context(), params.TrackName, params.ArtistName, params.AlbumName, params.Duration)
	if err != nil {
		return fmt.Errorf("failed to look up track: %w", err)
	}
	if track == nil {
		return hosting.ErrTrackNotFound()
	}
	return c.JSON(hosting.NewTrackResponse(track))
}

// GetByID serves GET /api/get/:id.
func (h *Handler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return hosting.ErrTrackNotFound()
	}

	track, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to look up track %d: %w", id, err)
	}
	if track == nil {
		return hosting.ErrTrackNotFound()
	}
	return c.JSON(hosting.NewTrackResponse(track))
}
