// Package config loads the backend configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the backend.
type Config struct {
	// DSN is the SQLite database file. Defaults to a file in the local
	// data directory.
	DSN string `env:"DB_DSN" envDefault:"data/backend.db"`

	// APIURL is the URL the backend is reachable at, used to generate
	// links in API responses.
	APIURL url.URL `env:"API_URL" envDefault:"http://localhost:8080"`

	// GinMode is passed to gin verbatim.
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	// LogFormat can be set to "human" for a console writer. The default
	// is JSON for release mode and human readable when gin is debugging.
	LogFormat string `env:"LOG_FORMAT"`

	// CORSAllowOrigins is a space separated list of allowed origins.
	// CORS headers are only sent when it is set.
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS"`

	// EnablePprof exposes the pprof profiles under /debug/pprof.
	EnablePprof bool `env:"ENABLE_PPROF"`

	// ReceiptDir is the directory receipt files are stored in.
	ReceiptDir string `env:"RECEIPT_DIR" envDefault:"data/receipts"`

	// AnalysisURL is the base URL of the external risk analysis service.
	// Risk analysis endpoints return an error when it is unset.
	AnalysisURL string `env:"ANALYSIS_URL"`

	// AnalysisTimeout bounds a single call to the analysis service.
	AnalysisTimeout time.Duration `env:"ANALYSIS_TIMEOUT" envDefault:"25s"`

	// ReadHeaderTimeout bounds reading the request headers.
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"45s"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return config, nil
}
