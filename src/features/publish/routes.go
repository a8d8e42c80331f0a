package publish

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the publish feature.
func RegisterRoutes(app *fiber.App, service *Service, tokens TokenVerifier) {
	handler := NewHandler(service, tokens)

	api := app.Group("/api")
	api.Post("/publish", handler.Publish)
	api.Post("/flag", handler.FlagLyrics)
}
