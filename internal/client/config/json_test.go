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

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"server_url":          "https://social.example",
		"db_path":             "x.db",
		"request_timeout":     "15s",
		"requests_per_second": 1.5,
		"feed_page_size":      5,
		"session_cookie_name": "jwt",
		"log_level":           "error",
		"metrics_file":        "m.prom",
	})

	t.Run("loads every field", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := defaults()
		parseJson(&cfg)

		assert.Equal(t, "https://social.example", cfg.ServerURL)
		assert.Equal(t, "x.db", cfg.DBPath)
		assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 1.5, cfg.RequestsPerSecond)
		assert.Equal(t, 5, cfg.FeedPageSize)
		assert.Equal(t, "jwt", cfg.SessionCookieName)
		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, "m.prom", cfg.MetricsFile)
	})

	t.Run("nanosecond durations", func(t *testing.T) {
		p := writeTempJSON(t, dir, "ns.json", map[string]any{"request_timeout": 2000000000})
		os.Args = []string{"testbin", "-c", p}

		cfg := defaults()
		parseJson(&cfg)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		p := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "warn"})
		os.Args = []string{"testbin", "-c", p}

		cfg := defaults()
		parseJson(&cfg)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	})

	t.Run("no flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := defaults()
		parseJson(&cfg)
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		cfg := defaults()
		require.Panics(t, func() { parseJson(&cfg) })
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		cfg := defaults()
		require.Panics(t, func() { parseJson(&cfg) })
	})
}
