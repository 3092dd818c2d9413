package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest("honeypot", OutcomeSuccess, 120*time.Millisecond)
	m.RecordRequest("honeypot", OutcomeSuccess, 80*time.Millisecond)
	m.RecordRequest("honeypot", OutcomeCached, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("honeypot", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("honeypot", OutcomeCached)))
}

func TestRecordAnalysis(t *testing.T) {
	m := New()
	m.RecordAnalysis("SAFE", 91)
	m.RecordAnalysisFailure()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("SAFE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("failed")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("liquidity", OutcomeError, time.Second)
		m.RecordAnalysis("RISKY", 45)
		m.RecordAnalysisFailure()
		m.SetCircuitState(1)
	})
	assert.Nil(t, m.Registry())
}

func TestHandler(t *testing.T) {
	m := New()
	m.SetCircuitState(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "tokenshield_gateway_circuit_state 1"), body)
}
