// Package config loads runtime configuration for the dreamteller client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c / -config or the
//     DREAMTELLER_CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   dream API origin
//	-id string  auth API origin (defaults to -a)
//	-t int      request timeout (seconds)
//	-d string   local SQLite database path
//	-l string   log level
//	-m          offline mode: in-process identity provider
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds. Keys that are absent keep their previous value:
//
//	{
//	  "server_base_url": "https://dreams.example.com",
//	  "identity_base_url": "https://auth.example.com",
//	  "request_timeout": "30s",
//	  "database_path": "/var/lib/dreamteller/client.db",
//	  "log_level": "debug",
//	  "offline_identity": false
//	}
package config
