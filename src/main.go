package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/lrclib/lrclib/src/features/challenge"
	"github.com/lrclib/lrclib/src/features/config"
	"github.com/lrclib/lrclib/src/features/hosting"
	"github.com/lrclib/lrclib/src/features/logging"
	"github.com/lrclib/lrclib/src/features/lookup"
	"github.com/lrclib/lrclib/src/features/metrics"
	"github.com/lrclib/lrclib/src/features/publish"
	"github.com/lrclib/lrclib/src/features/scraping"
	"github.com/lrclib/lrclib/src/features/search"
	"github.com/lrclib/lrclib/src/infra/cache"
	"github.com/lrclib/lrclib/src/infra/database"
	"github.com/lrclib/lrclib/src/infra/providers"
	"github.com/lrclib/lrclib/src/infra/queue"
)

func main() {
	// Best effort; a missing .env file is fine.
	godotenv.Load()

	app := &cli.App{
		Name:  "lrclib",
		Usage: "public lyrics repository service",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the LRCLIB server",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "the port the server binds to",
						EnvVars: []string{"LRCLIB_PORT"},
					},
					&cli.StringFlag{
						Name:    "database",
						Aliases: []string{"d"},
						Usage:   "path to the database file",
						EnvVars: []string{"LRCLIB_DATABASE_FILE"},
					},
					&cli.IntFlag{
						Name:    "workers-count",
						Aliases: []string{"w"},
						Usage:   "the number of queue processing workers",
						EnvVars: []string{"LRCLIB_WORKERS_COUNT"},
					},
					&cli.StringFlag{
						Name:    "config",
						Value:   "config.yaml",
						Usage:   "path to the YAML config file",
						EnvVars: []string{"LRCLIB_CONFIG"},
					},
				},
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	configPath := c.String("config")
	cfgManager, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flags beat both the file and the LRCLIB_* environment overrides.
	cfg := *cfgManager.Get()
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.IsSet("database") {
		cfg.Database.Path = c.String("database")
	}
	if c.IsSet("workers-count") {
		cfg.Workers.Count = c.Int("workers-count")
	}
	if err := config.Validate(&cfg); err != nil {
		return err
	}
	cfgManager.Update(&cfg)

	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfgManager.Watch(ctx, configPath); err != nil {
		slog.Error("Config hot reload disabled", "error", err)
	}

	store, err := database.NewSqliteStore(cfg.Database.Path, cfg.Database.MaxConnections)
	if err != nil {
		return err
	}
	defer store.Close()

	challengeCache, err := cache.New(100_000, 5*time.Minute)
	if err != nil {
		return err
	}
	getCache, err := cache.New(100_000, 72*time.Hour)
	if err != nil {
		return err
	}
	searchCache, err := cache.NewWithIdle(500_000, 24*time.Hour, 4*time.Hour)
	if err != nil {
		return err
	}

	missingQueue := queue.NewBounded(cfg.Queue.Capacity)

	metricsService := metrics.NewService(missingQueue)
	metricsService.Start(ctx)

	challengeService := challenge.NewService(challengeCache, store)
	challengeService.Start(ctx)

	scrapingService := scraping.NewService(store, missingQueue, newProvider(cfg.Provider), metricsService)
	scrapingService.Start(ctx, cfg.Workers.Count)

	lookupService := lookup.NewService(store, getCache, missingQueue)
	searchService := search.NewService(store, searchCache)
	publishService := publish.NewService(store, metricsService)

	server := hosting.NewServer(cfgManager, metricsService)
	app := server.App()
	lookup.RegisterRoutes(app, lookupService)
	search.RegisterRoutes(app, searchService)
	challenge.RegisterRoutes(app, challengeService)
	publish.RegisterRoutes(app, publishService, challengeService)
	metrics.RegisterRoutes(app, metricsService)

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()
	slog.Info("LRCLIB server is listening", "port", cfg.Server.Port, "workers", cfg.Workers.Count)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	cancel()
	if err := server.Shutdown(); err != nil {
		return err
	}
	slog.Info("Server gracefully shut down.")
	return nil
}

func newProvider(cfg config.Provider) scraping.Provider {
	switch cfg.Name {
	case "mirror":
		return providers.NewMirrorProvider(cfg.BaseURL)
	default:
		return providers.NewNoopProvider()
	}
}
