package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_dsn":      "library.db",
		"s3_endpoint":       "http://minio:9000",
		"s3_bucket":         "books",
		"s3_use_path_style": true,
		"cache_freshness":   "90s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "library.db", cfg.DatabaseDSN)
		assert.Equal(t, "http://minio:9000", cfg.S3Endpoint)
		assert.Equal(t, "books", cfg.S3Bucket)
		assert.True(t, cfg.S3UsePathStyle)
		assert.Equal(t, 90*time.Second, cfg.CacheFreshness)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			DatabaseDSN:    "keep.db",
			CacheFreshness: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "keep.db", cfg.DatabaseDSN)
		assert.Equal(t, 42*time.Second, cfg.CacheFreshness)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
