package config

// Config holds the application configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Workers   Workers   `yaml:"workers"`
	Queue     Queue     `yaml:"queue"`
	Logger    Logger    `yaml:"logger"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Provider  Provider  `yaml:"provider"`
}

// Server holds the configuration for the Fiber server.
type Server struct {
	Port        int  `yaml:"port" validate:"required,min=1,max=65535"`
	PrintRoutes bool `yaml:"show_routes"`
}

// Database holds the configuration for the SQLite database.
type Database struct {
	Path           string `yaml:"path" validate:"required"`
	MaxConnections int    `yaml:"max_connections" validate:"min=0"`
}

// Workers holds the configuration for the lyrics worker pool.
type Workers struct {
	Count int `yaml:"count" validate:"min=0"`
}

// Queue holds the configuration for the missing track queue.
type Queue struct {
	Capacity int `yaml:"capacity" validate:"min=0"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RateLimit holds the configuration for per-client request limiting.
type RateLimit struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Provider holds the configuration for the lyrics provider used by workers.
// BaseURL is only read by the mirror provider.
type Provider struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}
