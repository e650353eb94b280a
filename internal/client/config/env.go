package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvS3AccessKey     = "S3_ACCESS_KEY"
	EnvS3SecretKey     = "S3_SECRET_KEY"
)

// parseEnv loads the optional .env file into the process environment (real
// environment variables win) and reads the secrets from it. Secrets are
// never taken from JSON or flags.
func parseEnv(cfg *Config) error {
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", cfg.EnvFile, err)
		}
	}

	cfg.AnthropicAPIKey = os.Getenv(EnvAnthropicAPIKey)
	cfg.S3AccessKey = os.Getenv(EnvS3AccessKey)
	cfg.S3SecretKey = os.Getenv(EnvS3SecretKey)
	return nil
}
