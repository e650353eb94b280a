package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/client/merge"
	"github.com/dmitrijs2005/contractorbook/internal/client/remote"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

// Config holds runtime settings for the ContractorBook terminal client.
type Config struct {
	DatabasePath string
	// EndpointURL seeds the webhook URL when none has been saved yet.
	EndpointURL string

	HTTPTimeout      time.Duration
	PushMode         string
	MergePolicy      string
	SyncInterval     time.Duration
	JobSyncDelay     time.Duration
	ExpenseSyncDelay time.Duration
	PullDelay        time.Duration

	LogFile  string
	LogLevel string

	ImageDir    string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	AnthropicAPIKey string
	AnthropicModel  string
	InboxDir        string

	EnvFile string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "contractorbook.db"
	c.HTTPTimeout = remote.DefaultTimeout
	c.PushMode = string(remote.PushConfirmed)
	c.MergePolicy = merge.RemoteWins.String()
	c.SyncInterval = 30 * time.Second
	c.JobSyncDelay = 500 * time.Millisecond
	c.ExpenseSyncDelay = 1000 * time.Millisecond
	c.PullDelay = 500 * time.Millisecond
	c.LogFile = "contractorbook.log"
	c.LogLevel = "info"
	c.ImageDir = "receipts"
	c.S3Region = "us-east-1"
	c.EnvFile = ".env"
}

// Validate checks the enumerated and duration settings.
func (c *Config) Validate() error {
	if _, err := remote.ParsePushMode(c.PushMode); err != nil {
		return err
	}
	if _, err := merge.ParsePolicy(c.MergePolicy); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", c.SyncInterval)
	}
	return nil
}

// Load builds a Config from defaults, then secrets from the environment
// (optionally via a .env file), then the JSON file named by -c/-config, then
// command-line flags. Later sources take precedence.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load applied to the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
