package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/contractorbook/internal/flagx"
	"github.com/dmitrijs2005/contractorbook/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "10s" or
// integer nanoseconds; absent keys keep their current value.
type JsonConfig struct {
	ListenAddr      *string         `json:"listen_addr"`
	Storage         *string         `json:"storage"`
	DatabaseDSN     *string         `json:"database_dsn"`
	DeploymentID    *string         `json:"deployment_id"`
	LogLevel        *string         `json:"log_level"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	EnvFile         *string         `json:"env_file"`
}

// parseJson overlays cfg with the JSON file named by -c or -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for dst, src := range map[*string]*string{
		&cfg.ListenAddr:   c.ListenAddr,
		&cfg.Storage:      c.Storage,
		&cfg.DatabaseDSN:  c.DatabaseDSN,
		&cfg.DeploymentID: c.DeploymentID,
		&cfg.LogLevel:     c.LogLevel,
		&cfg.EnvFile:      c.EnvFile,
	} {
		if src != nil {
			*dst = *src
		}
	}
	if c.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	return nil
}
