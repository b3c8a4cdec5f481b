package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	base := defaults()
	full := base
	full.ServerURL = "http://api.example:9090"
	full.DBPath = "/tmp/x.db"
	full.RequestTimeout = 10 * time.Second
	full.RequestsPerSecond = 3
	full.LogLevel = "debug"
	full.MetricsFile = "/tmp/m.prom"

	tests := []struct {
		expected    Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "http://api.example:9090", "-d", "/tmp/x.db", "-t", "10",
				"-r", "3", "-l", "debug", "-m", "/tmp/m.prom"},
			expected: full,
		},
		{name: "unknown flags ignored", args: []string{"cmd", "-c", "cfg.json", "-x", "1"}, expected: base},
		{name: "bad timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
		{name: "bad rps", args: []string{"cmd", "-r", "fast"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(&cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(&cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
