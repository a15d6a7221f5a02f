package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/valetkey/internal/flagx"
)

// ValuedFlags lists every flag that consumes a value, config flags included.
// The CLI uses it to find positional arguments.
var ValuedFlags = []string{"-a", "-p", "-s", "-t", "-d", "-o", "-l", "-L", "-m", "-c", "-config"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   API base URL
//	-p string   base URL used in public share links
//	-s int      page size
//	-t int      request timeout (seconds)
//	-d string   session database path ("" keeps the session in memory)
//	-o string   download directory
//	-l string   log level
//	-L string   log backend (slog|zap)
//	-m string   metrics listen address
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-s", "-t", "-d", "-o", "-l", "-L", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "API base URL")
	fs.StringVar(&cfg.PublicBaseURL, "p", cfg.PublicBaseURL, "base URL for public share links")
	fs.IntVar(&cfg.PageSize, "s", cfg.PageSize, "files per page")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SessionDSN, "d", cfg.SessionDSN, "session database path")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogBackend, "L", cfg.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
