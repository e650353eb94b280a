package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/contractorbook/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
//	-a string    listen address (e.g. ":8080")
//	-s string    storage (memory|postgres)
//	-d string    PostgreSQL DSN
//	-k string    deployment id
//	-v string    log level
//	-w duration  shutdown timeout
//	-env string  .env file
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-d", "-k", "-v", "-w", "-env"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to run server")
	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "storage (memory|postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.DeploymentID, "k", cfg.DeploymentID, "deployment id")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.DurationVar(&cfg.ShutdownTimeout, "w", cfg.ShutdownTimeout, "shutdown timeout")
	fs.StringVar(&cfg.EnvFile, "env", cfg.EnvFile, ".env file")

	return fs.Parse(args)
}
