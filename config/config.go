package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		// Port the HTTP API listens on
		Port string `env:"SERVER_PORT" envDefault:"5250"`

		// Allowed CORS origins for the dashboard frontend
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	// Database configuration
	Database struct {
		// Path to the sqlite database file
		Path string `env:"DATABASE_PATH" envDefault:"database/casaora.db"`
	}

	// BatchProcessing configuration for the record ingestion pipeline
	BatchProcessing struct {
		// Maximum number of records to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	// Snapshot configuration for the scheduled portfolio recompute
	Snapshot struct {
		// Minutes between scheduled snapshot runs
		IntervalMinutes int `env:"SNAPSHOT_INTERVAL_MINUTES" envDefault:"15"`
	}

	// Telegram configuration for critical-health alerts
	Telegram struct {
		IsEnabled bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken  string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID    string `env:"TELEGRAM_CHAT_ID"`

		// Only alert on properties with at least this many overdue collections
		MinOverdueCollections int `env:"TELEGRAM_MIN_OVERDUE" envDefault:"0"`

		// City allow-list for alerts; empty allows all cities
		Cities []string `env:"TELEGRAM_CITIES" envSeparator:","`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
