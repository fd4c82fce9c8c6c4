package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/dreamteller/internal/flagx"
	"github.com/dmitrijs2005/dreamteller/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value.
type JsonConfig struct {
	ServerBaseURL   *string         `json:"server_base_url"`
	IdentityBaseURL *string         `json:"identity_base_url"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	DatabasePath    *string         `json:"database_path"`
	LogLevel        *string         `json:"log_level"`
	OfflineIdentity *bool           `json:"offline_identity"`
}

// parseJson overlays Config with values from the JSON file named by
// flagx.JsonConfigFlags. No file means no changes. Read or decode errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.IdentityBaseURL != nil {
		cfg.IdentityBaseURL = *jc.IdentityBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.OfflineIdentity != nil {
		cfg.OfflineIdentity = *jc.OfflineIdentity
	}
}
