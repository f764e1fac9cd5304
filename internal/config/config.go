package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSupabase = "supabase"
	DriverMemory   = "memory"
)

type Config struct {
	Environment string   `envconfig:"ENVIRONMENT" default:"development"`
	Port        string   `envconfig:"PORT" default:"8080"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	BaseURL     string   `envconfig:"BASE_URL"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	RedisAddr   string   `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	StoreDriver    string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	StoreMigrate   bool   `envconfig:"STORE_MIGRATE" default:"true"`
	StoreBatchSize int    `envconfig:"STORE_BATCH_SIZE" default:"100"`

	SupabaseURL string  `envconfig:"SUPABASE_URL"`
	SupabaseKey string  `envconfig:"SUPABASE_KEY"`
	SupabaseRPS float64 `envconfig:"SUPABASE_RPS" default:"20"`

	EpisodeStaleAfter time.Duration `envconfig:"EPISODE_STALE_AFTER" default:"30m"`
	YtDlpPath         string        `envconfig:"YTDLP_PATH" default:"yt-dlp"`
}

// Load reads an optional .env file and then decodes the environment.
// The returned bool reports whether a .env file was found.
func Load() (Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, dotenv, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, dotenv, err
	}
	return cfg, dotenv, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverPgx:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
	case DriverSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase driver")
		}
		if c.SupabaseRPS <= 0 {
			return fmt.Errorf("SUPABASE_RPS must be positive")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreBatchSize <= 0 {
		return fmt.Errorf("STORE_BATCH_SIZE must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}
