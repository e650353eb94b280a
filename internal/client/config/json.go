package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/flagx"
	"github.com/dmitrijs2005/contractorbook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the current value alone.
type JsonConfig struct {
	DatabasePath     *string         `json:"database_path"`
	EndpointURL      *string         `json:"endpoint_url"`
	HTTPTimeout      *timex.Duration `json:"http_timeout"`
	PushMode         *string         `json:"push_mode"`
	MergePolicy      *string         `json:"merge_policy"`
	SyncInterval     *timex.Duration `json:"sync_interval"`
	JobSyncDelay     *timex.Duration `json:"job_sync_delay"`
	ExpenseSyncDelay *timex.Duration `json:"expense_sync_delay"`
	PullDelay        *timex.Duration `json:"pull_delay"`
	LogFile          *string         `json:"log_file"`
	LogLevel         *string         `json:"log_level"`
	ImageDir         *string         `json:"image_dir"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3Endpoint       *string         `json:"s3_endpoint"`
	AnthropicModel   *string         `json:"anthropic_model"`
	InboxDir         *string         `json:"inbox_dir"`
	EnvFile          *string         `json:"env_file"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays cfg with the JSON file named by -c or -config.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.EndpointURL, jc.EndpointURL)
	setString(&cfg.PushMode, jc.PushMode)
	setString(&cfg.MergePolicy, jc.MergePolicy)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.ImageDir, jc.ImageDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.AnthropicModel, jc.AnthropicModel)
	setString(&cfg.InboxDir, jc.InboxDir)
	setString(&cfg.EnvFile, jc.EnvFile)

	for dst, src := range map[*time.Duration]*timex.Duration{
		&cfg.HTTPTimeout:      jc.HTTPTimeout,
		&cfg.SyncInterval:     jc.SyncInterval,
		&cfg.JobSyncDelay:     jc.JobSyncDelay,
		&cfg.ExpenseSyncDelay: jc.ExpenseSyncDelay,
		&cfg.PullDelay:        jc.PullDelay,
	} {
		if src != nil {
			*dst = src.Duration
		}
	}
	return nil
}
