// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Ingestion
	YtDlpPath       string        `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	CaptionLanguage string        `env:"CAPTION_LANGUAGE" envDefault:"en"`
	FetchRPS        float64       `env:"FETCH_RPS" envDefault:"0.5"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"2m"`
	WatchChannels   []string      `env:"WATCH_CHANNELS" envSeparator:","`
	WatchInterval   time.Duration `env:"WATCH_INTERVAL" envDefault:"30m"`
	DefaultPriority int           `env:"DEFAULT_PRIORITY" envDefault:"0"`

	// Health review
	ReviewInterval time.Duration `env:"REVIEW_INTERVAL" envDefault:"1h"`
	StaleAfter     time.Duration `env:"STALE_AFTER" envDefault:"720h"`
	StaleLimit     int           `env:"STALE_LIMIT" envDefault:"100"`

	// Full-text search backend. Indexing is disabled when SolrBaseURL is
	// empty.
	SolrBaseURL string        `env:"SOLR_BASE_URL"`
	SolrTimeout time.Duration `env:"SOLR_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
