package config

import "time"

// Config holds runtime settings for the shelfsync CLI.
//
// Fields:
//   - DatabaseDSN: path (or sqlite DSN) of the local library database.
//   - S3Endpoint / S3Region / S3Bucket: location of the remote blob store.
//   - S3AccessKey / S3SecretKey: static credentials for the store.
//   - S3UsePathStyle: use path-style addressing (needed for MinIO and such).
//   - S3MaxRetries: transport-level retry attempts for store calls.
//   - CacheFreshness: how long a remote listing is trusted without re-listing.
//
// Units: CacheFreshness is a time.Duration (e.g., 60*time.Second).
type Config struct {
	DatabaseDSN    string
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	S3MaxRetries   int
	CacheFreshness time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "shelfsync.db"
	c.S3Endpoint = "http://127.0.0.1:9000"
	c.S3Region = "us-east-1"
	c.S3Bucket = "shelfsync"
	c.S3AccessKey = ""
	c.S3SecretKey = ""
	c.S3UsePathStyle = true
	c.S3MaxRetries = 3
	c.CacheFreshness = 60 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
