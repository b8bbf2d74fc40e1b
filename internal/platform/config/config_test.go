package config

import (
	"os"
	"testing"
	"time"
)

const (
	testEnvPostgresDSN = "POSTGRES_DSN"
	testPostgresDSN    = "postgres://localhost/test"
	testErrLoad        = "Load() error = %v"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvPostgresDSN)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.PostgresDSN != testPostgresDSN {
		t.Errorf("PostgresDSN = %q, want %q", cfg.PostgresDSN, testPostgresDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	// Explicitly unset variables that might be in .env to test actual defaults
	os.Unsetenv("APP_ENV")
	os.Unsetenv("HEALTH_PORT")
	os.Unsetenv("YTDLP_PATH")
	os.Unsetenv("CAPTION_LANGUAGE")
	os.Unsetenv("STALE_AFTER")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv default = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort default = %d, want %d", cfg.HealthPort, 8080)
	}

	if cfg.YtDlpPath != "yt-dlp" {
		t.Errorf("YtDlpPath default = %q, want %q", cfg.YtDlpPath, "yt-dlp")
	}

	if cfg.CaptionLanguage != "en" {
		t.Errorf("CaptionLanguage default = %q, want %q", cfg.CaptionLanguage, "en")
	}

	if cfg.StaleAfter != 720*time.Hour {
		t.Errorf("StaleAfter default = %v, want %v", cfg.StaleAfter, 720*time.Hour)
	}
}

func TestLoad_WatchChannels(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("WATCH_CHANNELS", "UCaaa,UCbbb,UCccc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if len(cfg.WatchChannels) != 3 {
		t.Fatalf("WatchChannels length = %d, want %d", len(cfg.WatchChannels), 3)
	}

	expected := []string{"UCaaa", "UCbbb", "UCccc"}
	for i, want := range expected {
		if cfg.WatchChannels[i] != want {
			t.Errorf("WatchChannels[%d] = %q, want %q", i, cfg.WatchChannels[i], want)
		}
	}
}

func TestLoad_InvalidNumeric(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("HEALTH_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("expected error for invalid HEALTH_PORT")
	}
}

func TestDomainCfgAccessors(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	dbCfg := cfg.DatabaseCfg()
	if dbCfg.PostgresDSN != testPostgresDSN {
		t.Errorf("DatabaseCfg().PostgresDSN = %q, want %q", dbCfg.PostgresDSN, testPostgresDSN)
	}

	reviewCfg := cfg.ReviewCfg()
	if reviewCfg.StaleLimit != 100 {
		t.Errorf("ReviewCfg().StaleLimit = %d, want %d", reviewCfg.StaleLimit, 100)
	}

	solrCfg := cfg.SolrCfg()
	if solrCfg.Timeout != 10*time.Second {
		t.Errorf("SolrCfg().Timeout = %v, want %v", solrCfg.Timeout, 10*time.Second)
	}
}
