package publish

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lrclib/lrclib/src/features/hosting"
)

// TokenVerifier validates and consumes proof-of-work publish tokens.
type TokenVerifier interface {
	Verify(token string) bool
}

// Handler is the handler for the publish feature.
type Handler struct {
	service  *Service
	tokens   TokenVerifier
	validate *validator.Validate
}

// NewHandler creates a new handler for the publish feature.
func NewHandler(service *Service, tokens TokenVerifier) *Handler {
	return &Handler{service: service, tokens: tokens, validate: validator.New()}
}

// Publish serves POST /api/publish. The publish token is checked before
// anything else; a bad token wins over a bad body.
func (h *Handler) Publish(c *fiber.Ctx) error {
	if !h.tokens.Verify(c.Get("X-Publish-Token")) {
		return hosting.ErrIncorrectPublishToken()
	}

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return hosting.ErrValidation(err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return hosting.ErrValidation(err.Error())
	}

	if err := h.service.Publish(c.Context(), &req); err != nil {
		return fmt.Errorf("failed to publish lyrics: %w", err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

type flagRequest struct {
	TrackID int64  `json:"trackId" validate:"required"`
	Content string `json:"content"`
}

// FlagLyrics serves POST /api/flag, gated by the same token scheme.
func (h *Handler) FlagLyrics(c *fiber.Ctx) error {
	if !h.tokens.Verify(c.Get("X-Publish-Token")) {
		return hosting.ErrIncorrectPublishToken()
	}

	var req flagRequest
	if err := c.BodyParser(&req); err != nil {
		return hosting.ErrValidation(err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return hosting.ErrValidation(err.Error())
	}

	if err := h.service.Flag(c.Context(), req.TrackID, req.Content); err != nil {
		return fmt.Errorf("failed to flag lyrics: %w", err)
	}
	return c.SendStatus(fiber.StatusCreated)
}
