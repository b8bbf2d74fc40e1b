package config

import "time"

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	PostgresDSN       string        `env:"POSTGRES_DSN,required"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// IngestConfig holds video fetching and channel watch settings.
type IngestConfig struct {
	YtDlpPath       string
	CaptionLanguage string
	FetchRPS        float64
	FetchTimeout    time.Duration
	WatchChannels   []string
	WatchInterval   time.Duration
	DefaultPriority int
}

// ReviewConfig holds health review settings.
type ReviewConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	StaleLimit int
}

// SolrConfig holds full-text search backend settings.
type SolrConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DatabaseCfg returns the database configuration extracted from Config.
func (c *Config) DatabaseCfg() DatabaseConfig {
	return DatabaseConfig{
		PostgresDSN:       c.PostgresDSN,
		MaxConnections:    c.DBMaxConnections,
		MinConnections:    c.DBMinConnections,
		MaxConnIdleTime:   c.DBMaxConnIdleTime,
		MaxConnLifetime:   c.DBMaxConnLifetime,
		HealthCheckPeriod: c.DBHealthCheckPeriod,
	}
}

// IngestCfg returns the ingestion configuration.
func (c *Config) IngestCfg() IngestConfig {
	return IngestConfig{
		YtDlpPath:       c.YtDlpPath,
		CaptionLanguage: c.CaptionLanguage,
		FetchRPS:        c.FetchRPS,
		FetchTimeout:    c.FetchTimeout,
		WatchChannels:   c.WatchChannels,
		WatchInterval:   c.WatchInterval,
		DefaultPriority: c.DefaultPriority,
	}
}

// ReviewCfg returns the health review configuration.
func (c *Config) ReviewCfg() ReviewConfig {
	return ReviewConfig{
		Interval:   c.ReviewInterval,
		StaleAfter: c.StaleAfter,
		StaleLimit: c.StaleLimit,
	}
}

// SolrCfg returns the full-text search backend configuration.
func (c *Config) SolrCfg() SolrConfig {
	return SolrConfig{
		BaseURL: c.SolrBaseURL,
		Timeout: c.SolrTimeout,
	}
}
