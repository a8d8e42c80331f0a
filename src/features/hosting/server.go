package hosting

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/lrclib/lrclib/src/features/config"
	"github.com/lrclib/lrclib/src/features/metrics"
)

// Server is the HTTP server for the application. Feature packages
// register their routes on App before Start is called.
type Server struct {
	app  *fiber.App
	port int
}

// NewServer creates the fiber app with CORS, request logging and the
// error envelope wired in.
func NewServer(cfg *config.Manager, metricsService *metrics.Service) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		AppName:               "LRCLIB",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Content-Type, X-User-Agent, Lrclib-Client, X-Publish-Token",
	}))
	app.Use(RequestLogger(metricsService))

	limits := cfg.Get().RateLimit
	app.Use(RateLimit(cfg, NewIPRateLimiter(limits.RequestsPerSecond, limits.Burst)))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// App returns the underlying fiber app for route registration.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
