package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Overlays(t *testing.T) {
	t.Setenv("GOPHSOCIAL_DB_PATH", "/tmp/env.db")
	t.Setenv("GOPHSOCIAL_REQUEST_TIMEOUT", "7s")
	t.Setenv("GOPHSOCIAL_RPS", "2.5")
	t.Setenv("GOPHSOCIAL_FEED_PAGE_SIZE", "4")
	t.Setenv("GOPHSOCIAL_SESSION_COOKIE", "sid")
	t.Setenv("GOPHSOCIAL_METRICS_FILE", "/tmp/m.prom")

	c := defaults()
	parseEnv(&c)

	assert.Equal(t, "/tmp/env.db", c.DBPath)
	assert.Equal(t, 7*time.Second, c.RequestTimeout)
	assert.Equal(t, 2.5, c.RequestsPerSecond)
	assert.Equal(t, 4, c.FeedPageSize)
	assert.Equal(t, "sid", c.SessionCookieName)
	assert.Equal(t, "/tmp/m.prom", c.MetricsFile)
	assert.Equal(t, "http://localhost:8080", c.ServerURL, "unset vars keep their value")
}

func TestParseEnv_BadValuePanics(t *testing.T) {
	t.Setenv("GOPHSOCIAL_FEED_PAGE_SIZE", "many")

	c := defaults()
	require.Panics(t, func() { parseEnv(&c) })
}
