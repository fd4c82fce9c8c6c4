package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. It only looks
// at the flags it owns (see flagx.FilterArgs), so -c/-config pass through.
// A malformed value panics.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-id", "-t", "-d", "-l", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "dream API origin")
	fs.StringVar(&cfg.IdentityBaseURL, "id", cfg.IdentityBaseURL, "auth API origin (defaults to -a)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.OfflineIdentity, "m", cfg.OfflineIdentity, "use the in-process identity provider")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
