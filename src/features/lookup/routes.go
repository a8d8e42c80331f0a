package lookup

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the lookup feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	api := app.Group("/api")
	api.Get("/get", handler.GetByMetadata)
	api.Get("/get/:id", handler.GetByID)
}
