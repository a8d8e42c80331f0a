package config

var defaultConfig = Config{
	Server: Server{
		Port:        3300,
		PrintRoutes: false,
	},
	Database: Database{
		Path:           "./lrclib.db",
		MaxConnections: 30,
	},
	Workers: Workers{
		Count: 0,
	},
	Queue: Queue{
		Capacity: 10000,
	},
	Logger: Logger{
		Level:  "info",
		Format: "text",
	},
	RateLimit: RateLimit{
		Enabled:           false,
		RequestsPerSecond: 20,
		Burst:             40,
	},
	Provider: Provider{
		Name:    "noop",
		BaseURL: "https://lrclib.net",
	},
}
