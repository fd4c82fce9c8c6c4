package config

import "time"

// Config holds runtime settings for the dreamteller terminal client.
//
// Fields:
//   - ServerBaseURL: origin of the dream API, e.g. http://127.0.0.1:8080.
//   - IdentityBaseURL: origin of the auth/v1 API; empty means ServerBaseURL.
//   - RequestTimeout: per-request bound for every API call.
//   - DatabasePath: SQLite file holding local preferences.
//   - LogLevel: debug, info, warn or error.
//   - OfflineIdentity: use the in-process identity provider instead of the
//     auth API.
type Config struct {
	ServerBaseURL   string
	IdentityBaseURL string
	RequestTimeout  time.Duration
	DatabasePath    string
	LogLevel        string
	OfflineIdentity bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.IdentityBaseURL = ""
	c.RequestTimeout = 30 * time.Second
	c.DatabasePath = "dreamteller.db"
	c.LogLevel = "info"
	c.OfflineIdentity = false
}

// IdentityURL resolves the auth API origin.
func (c *Config) IdentityURL() string {
	if c.IdentityBaseURL != "" {
		return c.IdentityBaseURL
	}
	return c.ServerBaseURL
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
