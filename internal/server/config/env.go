package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const EnvDatabaseDSN = "DATABASE_DSN"

func parseEnv(cfg *Config) error {
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		cfg.DatabaseDSN = v
	}
	return nil
}
