package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestSink_TracksClientLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewSink(reg)

	s.ClientConnected("a")
	s.ClientConnected("b")
	assert.Equal(t, float64(2), counterValue(t, s.clientsConnected))
	assert.Equal(t, float64(2), gaugeValue(t, s.clientsActive))

	s.ClientDisconnected("a")
	assert.Equal(t, float64(1), counterValue(t, s.clientsDisconnected))
	assert.Equal(t, float64(1), gaugeValue(t, s.clientsActive))
}

func TestSink_TracksFrameMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewSink(reg)

	s.OSCMessage(1, 1000, 3, 128, 2)
	assert.Equal(t, float64(1), counterValue(t, s.framesEncoded))
	assert.Equal(t, float64(3), gaugeValue(t, s.objectsPerFrame))
	assert.Equal(t, float64(2), gaugeValue(t, s.clientsActive))
}

func TestSink_TracksServerStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewSink(reg)

	s.ServerStatus(true, 4)
	assert.Equal(t, float64(1), gaugeValue(t, s.serverRunning))
	assert.Equal(t, float64(4), gaugeValue(t, s.clientsActive))

	s.ServerStatus(false, 0)
	assert.Equal(t, float64(0), gaugeValue(t, s.serverRunning))
}

func TestNewHandler_ServesMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewSink(reg)

	handler := NewHandler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tuio_simulator_clients_active")
}
