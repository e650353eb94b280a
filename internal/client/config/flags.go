package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/contractorbook/internal/flagx"
)

var knownFlags = []string{
	"-d", "-u", "-t", "-i", "-m", "-p", "-l", "-v",
	"-images", "-bucket", "-region", "-s3-endpoint", "-model", "-inbox", "-env",
}

// parseFlags overlays cfg with command-line flags.
//
//	-d path      local database file
//	-u url       webhook URL used until one is saved in the app
//	-t duration  per-request timeout
//	-i duration  background sync interval
//	-m mode      push mode (confirmed|dispatch)
//	-p policy    merge policy (remote-wins|keep-local)
//	-l path      log file
//	-v level     log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.EndpointURL, "u", cfg.EndpointURL, "webhook URL")
	fs.DurationVar(&cfg.HTTPTimeout, "t", cfg.HTTPTimeout, "per-request timeout")
	fs.DurationVar(&cfg.SyncInterval, "i", cfg.SyncInterval, "background sync interval")
	fs.StringVar(&cfg.PushMode, "m", cfg.PushMode, "push mode (confirmed|dispatch)")
	fs.StringVar(&cfg.MergePolicy, "p", cfg.MergePolicy, "merge policy (remote-wins|keep-local)")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.ImageDir, "images", cfg.ImageDir, "local receipt image directory")
	fs.StringVar(&cfg.S3Bucket, "bucket", cfg.S3Bucket, "S3 bucket for receipt images")
	fs.StringVar(&cfg.S3Region, "region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3-compatible endpoint (MinIO)")
	fs.StringVar(&cfg.AnthropicModel, "model", cfg.AnthropicModel, "receipt extraction model")
	fs.StringVar(&cfg.InboxDir, "inbox", cfg.InboxDir, "folder watched for receipt photos")
	fs.StringVar(&cfg.EnvFile, "env", cfg.EnvFile, "secrets file")

	return fs.Parse(args)
}
