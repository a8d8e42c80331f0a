package challenge

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the challenge feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	api := app.Group("/api")
	api.Post("/request-challenge", handler.RequestChallenge)
}
