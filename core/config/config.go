// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable. Each field maps to a CARDPIPE_* env var.
type Config struct {
	// Model endpoint settings. The API key can also arrive via the
	// --api-key flag, which takes precedence.
	APIKey   string `envconfig:"API_KEY"`
	Endpoint string `envconfig:"ENDPOINT" default:"https://api.openai.com/v1/chat/completions"`
	Model    string `envconfig:"MODEL" default:"gpt-4o-mini"`

	OutputDir string `envconfig:"OUTPUT_DIR" default:"output"`

	// MaxLinks caps how many classified links get fetched per card page.
	MaxLinks int `envconfig:"MAX_LINKS" default:"5"`

	// Pacing between sequential operations.
	LinkDelay       time.Duration `envconfig:"LINK_DELAY" default:"2s"`
	CardDelay       time.Duration `envconfig:"CARD_DELAY" default:"3s"`
	ValidationDelay time.Duration `envconfig:"VALIDATION_DELAY" default:"500ms"`

	// NavTimeout bounds one browser navigation attempt.
	NavTimeout time.Duration `envconfig:"NAV_TIMEOUT" default:"60s"`

	// MaxContentLength truncates linked-page text fed into prompts.
	// Main page text is never truncated. 0 means no limit.
	MaxContentLength int `envconfig:"MAX_CONTENT_LENGTH" default:"0"`

	RespectRobots bool `envconfig:"RESPECT_ROBOTS" default:"false"`

	// Force* pin the processing mode when set; the --listing and
	// --single flags take precedence over both.
	ForceListing bool `envconfig:"FORCE_LISTING" default:"false"`
	ForceSingle  bool `envconfig:"FORCE_SINGLE" default:"false"`
}

// Load reads the optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Missing .env is normal outside local dev; only a present but
		// unreadable file is worth a warning.
		if _, statErr := os.Stat(".env"); statErr == nil {
			slog.Warn(".env file found but could not be loaded", "err", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("cardpipe", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
