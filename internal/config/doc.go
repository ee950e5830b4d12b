// Package config loads runtime configuration for the shelfsync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   local database path
//	-e string   remote store endpoint URL
//	-r string   remote store region
//	-b string   remote store bucket
//	-f int      listing freshness window (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the freshness window, so values can
// be either strings like "60s" or integer nanoseconds:
//
//	{
//	  "database_dsn": "shelfsync.db",
//	  "s3_endpoint": "http://127.0.0.1:9000",
//	  "s3_region": "us-east-1",
//	  "s3_bucket": "shelfsync",
//	  "s3_access_key": "minio",
//	  "s3_secret_key": "minio123",
//	  "s3_use_path_style": true,
//	  "s3_max_retries": 3,
//	  "cache_freshness": "60s"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for the CLI
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
