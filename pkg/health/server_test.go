package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenshield/pkg/network"
)

type stubStatus struct {
	connected     bool
	authenticated bool
	tasks         int
}

func (s stubStatus) IsConnected() bool        { return s.connected }
func (s stubStatus) IsAuthenticated() bool    { return s.authenticated }
func (s stubStatus) GetActiveTaskCount() int  { return s.tasks }
func (s stubStatus) GetUptime() time.Duration { return 90 * time.Second }

var testInfo = &AgentInfo{
	Name:         "TokenShield",
	Version:      "1.2.0",
	Network:      "solana",
	Authority:    "https://risk.example",
	Capabilities: []string{"analyze", "risk"},
}

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		status   stubStatus
		circuit  network.CircuitState
		wantCode int
		want     string
	}{
		{"healthy", stubStatus{connected: true}, network.CircuitClosed, http.StatusOK, "healthy"},
		{"circuit open", stubStatus{connected: true}, network.CircuitOpen, http.StatusOK, "degraded"},
		{"disconnected", stubStatus{}, network.CircuitClosed, http.StatusServiceUnavailable, "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(0, testInfo, tt.status, WithCircuit(func() network.CircuitBreakerStats {
				return network.CircuitBreakerStats{State: tt.circuit, StateName: tt.circuit.String()}
			}))
			rec := serve(t, s, "/health")
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["status"])
			assert.Equal(t, "TokenShield", body["agent"])
		})
	}
}

func TestStatus(t *testing.T) {
	s := NewServer(0, testInfo, stubStatus{connected: true, authenticated: true, tasks: 3})
	rec := serve(t, s, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.True(t, status.Authenticated)
	assert.Equal(t, 3, status.ActiveTasks)
	assert.Equal(t, "1m30s", status.Uptime)
	assert.Equal(t, "closed", status.Circuit.StateName)
	assert.Equal(t, "solana", status.Agent.Network)
}

func TestRootAndInfo(t *testing.T) {
	s := NewServer(0, testInfo, stubStatus{connected: true})

	rec := serve(t, s, "/")
	assert.Contains(t, rec.Body.String(), "TokenShield v1.2.0")
	assert.Contains(t, rec.Body.String(), "Capabilities: analyze, risk")
	assert.NotContains(t, rec.Body.String(), "/metrics")

	rec = serve(t, s, "/info")
	var info AgentInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, *testInfo, info)
}

func TestMountsMetricsAndAPI(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tokenshield_up 1\n"))
	})
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	})
	s := NewServer(0, testInfo, stubStatus{connected: true}, WithMetrics(metrics), WithAPI(api))

	assert.Equal(t, "tokenshield_up 1\n", serve(t, s, "/metrics").Body.String())
	assert.Equal(t, "/v1/tokens/abc", serve(t, s, "/v1/tokens/abc").Body.String(), "the API sees the full path")
	assert.Equal(t, http.StatusNotFound, serve(t, s, "/v2/tokens").Code)
}

func TestShutdownBeforeStart(t *testing.T) {
	s := NewServer(0, testInfo, stubStatus{connected: true})
	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, s.Start(), "a closed server does not listen")
}
