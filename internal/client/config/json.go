package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophsocial/internal/flagx"
	"github.com/dmitrijs2005/gophsocial/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// tell "absent" from "zero" so a file only overrides what it names.
type JsonConfig struct {
	ServerURL         *string         `json:"server_url"`
	DBPath            *string         `json:"db_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	FeedPageSize      *int            `json:"feed_page_size"`
	SessionCookieName *string         `json:"session_cookie_name"`
	LogLevel          *string         `json:"log_level"`
	MetricsFile       *string         `json:"metrics_file"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Without either flag nothing happens. Panics on read or unmarshal
// errors.
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
	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.DBPath != nil {
		cfg.DBPath = *jc.DBPath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	if jc.FeedPageSize != nil {
		cfg.FeedPageSize = *jc.FeedPageSize
	}
	if jc.SessionCookieName != nil {
		cfg.SessionCookieName = *jc.SessionCookieName
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.MetricsFile != nil {
		cfg.MetricsFile = *jc.MetricsFile
	}
}
