package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/samplekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (single or double dash):
//
//	-a string   base URL of the REST API
//	-d string   path of the local session database
//	-t int      request timeout in seconds
//	-l string   log level
//
// args is filtered with flagx.FilterArgs first, so flags and subcommands that
// belong to the command tree never reach this FlagSet.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, flagx.Variants("a", "d", "t", "l"))

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the REST API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local session database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
