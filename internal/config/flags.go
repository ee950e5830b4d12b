package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   local database path (default from Config)
//	-e string   remote store endpoint URL (default from Config)
//	-r string   remote store region (default from Config)
//	-b string   remote store bucket (default from Config)
//	-f int      listing freshness window in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-e", "-r", "-b", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database path")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "remote store endpoint URL")
	fs.StringVar(&cfg.S3Region, "r", cfg.S3Region, "remote store region")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "remote store bucket")
	freshness := fs.Int("f", int(cfg.CacheFreshness.Seconds()), "listing freshness window (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.CacheFreshness = time.Duration(*freshness) * time.Second
}
