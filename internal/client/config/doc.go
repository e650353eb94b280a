// Package config loads runtime configuration for the ContractorBook client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//  4. Secrets (ANTHROPIC_API_KEY, S3_ACCESS_KEY, S3_SECRET_KEY) from the
//     environment, optionally loaded from a .env file.
//
// # JSON schema
//
// Durations are strings like "30s" or integer nanoseconds:
//
//	{
//	  "database_path": "contractorbook.db",
//	  "endpoint_url": "https://script.google.com/macros/s/<id>/exec",
//	  "http_timeout": "30s",
//	  "push_mode": "confirmed",
//	  "merge_policy": "remote-wins",
//	  "sync_interval": "30s",
//	  "s3_bucket": "receipts",
//	  "inbox_dir": "inbox"
//	}
package config
