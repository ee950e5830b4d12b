package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/flagx"
	"github.com/dmitrijs2005/shelfsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the freshness window
// either as a string like "60s" or as integer nanoseconds. After parsing,
// values are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabaseDSN    string         `json:"database_dsn"`
	S3Endpoint     string         `json:"s3_endpoint"`
	S3Region       string         `json:"s3_region"`
	S3Bucket       string         `json:"s3_bucket"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
	S3UsePathStyle bool           `json:"s3_use_path_style"`
	S3MaxRetries   int            `json:"s3_max_retries"`
	CacheFreshness timex.Duration `json:"cache_freshness"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.S3Endpoint = jc.S3Endpoint
	cfg.S3Region = jc.S3Region
	cfg.S3Bucket = jc.S3Bucket
	cfg.S3AccessKey = jc.S3AccessKey
	cfg.S3SecretKey = jc.S3SecretKey
	cfg.S3UsePathStyle = jc.S3UsePathStyle
	cfg.S3MaxRetries = jc.S3MaxRetries
	cfg.CacheFreshness = time.Duration(jc.CacheFreshness.Duration)
}
