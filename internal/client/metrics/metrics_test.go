package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGateway_CountsByOperationAndResult(t *testing.T) {
	m := New()

	m.ObserveGateway("login", time.Now(), "ok")
	m.ObserveGateway("login", time.Now(), "ok")
	m.ObserveGateway("login", time.Now(), "rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayRequests.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayRequests.WithLabelValues("login", "rejected")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GatewayDuration))
}

func TestObserveTransitionsAndGuard(t *testing.T) {
	m := New()

	m.ObserveTransition("authenticated")
	m.ObserveTransition("anonymous")
	m.ObserveTransition("anonymous")
	m.ObserveStaleResolution()
	m.ObserveGuard("loading")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionTransitions.WithLabelValues("anonymous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleResolutions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("loading")))
}

func TestNilMetrics_AreNoOps(t *testing.T) {
	var m *Metrics
	m.ObserveGateway("login", time.Now(), "ok")
	m.ObserveTransition("anonymous")
	m.ObserveStaleResolution()
	m.ObserveGuard("render")
	require.NoError(t, m.WriteFile("ignored"))
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.ObserveGuard("redirect")

	path := filepath.Join(t.TempDir(), "client.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gophsocial_guard_decisions_total{action="redirect"} 1`)

	require.Error(t, m.WriteFile(""))
}
