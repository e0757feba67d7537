package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsObserveEvent(t *testing.T) {
	m := NewMetrics()
	m.ObserveEvent("strike", 2*time.Millisecond)
	m.ObserveEvent("strike", 4*time.Millisecond)
	m.ObserveEvent("movement", time.Millisecond)

	snap := m.EventSnapshot()
	require.Len(t, snap, 2)
	strike := snap["strike"]
	assert.Equal(t, int64(2), strike.Count)
	assert.Equal(t, 6*time.Millisecond, strike.Total)
	assert.Equal(t, 4*time.Millisecond, strike.Max)
}

func TestMetricsGauges(t *testing.T) {
	m := NewMetrics()
	m.SampleQueueSize(17)
	m.SamplePlayersOnline(3)
	assert.Equal(t, int64(17), m.QueueSize())
	assert.Equal(t, int64(3), m.PlayersOnline())
}

func TestTelemetryEndpoints(t *testing.T) {
	m := NewMetrics()
	m.SampleQueueSize(5)
	m.ObserveEvent("speech", time.Millisecond)
	srv := NewServer("127.0.0.1:0", m, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/gauges", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var gauges map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gauges))
	assert.Equal(t, int64(5), gauges["scheduler_queue_size"])

	req = httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "speech")

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
