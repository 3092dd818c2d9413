package modules

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenshield/pkg/analysis"
	"tokenshield/pkg/gateway"
	"tokenshield/pkg/network"
	"tokenshield/pkg/safety"
)

const mint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func newTestService(t *testing.T, h http.HandlerFunc) (*Service, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := gateway.New(server.URL, gateway.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	session := gateway.NewSession(client)
	return NewService(session, analysis.NewForSession(session), nil), &hits
}

func authority(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasPrefix(r.URL.Path, "/token/honeypot/"):
		_, _ = w.Write([]byte(`{"score": 100, "isHoneypot": false}`))
	case strings.HasPrefix(r.URL.Path, "/token/liquidity/"):
		_, _ = w.Write([]byte(`{"score": 50}`))
	case strings.HasPrefix(r.URL.Path, "/token/sentiment/"):
		_, _ = w.Write([]byte(`{"score": 64, "sentiment": {"positive": 70, "negative": "30"}}`))
	case r.URL.Path == "/token/search":
		_, _ = w.Write([]byte(`[{"symbol":"BONK"},{"symbol":"BONK2"}]`))
	case r.URL.Path == "/alerts/subscribe":
		_, _ = w.Write([]byte(`{"message": "check your inbox"}`))
	case r.URL.Path == "/meta/health":
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func TestRunAnalyze(t *testing.T) {
	s, _ := newTestService(t, authority)

	reply, err := s.RunAnalyze(context.Background(), []string{mint})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Token safety report for "+mint)
	assert.Contains(t, reply.Text, "Overall score: 77.78/100")
	assert.Contains(t, reply.Text, "Safety level: MODERATE (orange)")

	record, ok := reply.Data.(*safety.Record)
	require.True(t, ok)
	assert.Equal(t, safety.LevelModerate, record.Level)
}

func TestRunAnalyze_Rescan(t *testing.T) {
	var rescans int32
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("forceRescan") == "true" {
			atomic.AddInt32(&rescans, 1)
		}
		authority(w, r)
	})

	_, err := s.RunAnalyze(context.Background(), []string{mint, "--rescan"})
	require.NoError(t, err)
	assert.Equal(t, int32(len(analysis.DefaultDimensions)), atomic.LoadInt32(&rescans))
}

func TestRunAnalyze_Failure(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := s.RunAnalyze(context.Background(), []string{mint})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "token analysis failed"), err.Error())
	assert.NotContains(t, err.Error(), "upstream exploded")

	var fe *FailureError
	require.ErrorAs(t, err, &fe)
	assert.True(t, gateway.IsRemoteFetch(err), "the cause stays reachable")
}

func TestUsageReplies(t *testing.T) {
	s, hits := newTestService(t, authority)
	ctx := context.Background()

	runs := map[string]func(context.Context, []string) (Reply, error){
		"analyze":   s.RunAnalyze,
		"risk":      s.RunRisk,
		"dimension": s.RunDimension,
		"sentiment": s.RunSentiment,
		"pool":      s.RunPool,
		"wallet":    s.RunWallet,
		"website":   s.RunWebsite,
		"history":   s.RunHistory,
		"search":    s.RunSearch,
		"alerts":    s.RunAlerts,
		"subscribe": s.RunSubscribe,
	}
	for name, run := range runs {
		t.Run(name, func(t *testing.T) {
			reply, err := run(ctx, nil)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(reply.Text, "Usage: "+name), reply.Text)
		})
	}
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestInvalidInputNeverCallsService(t *testing.T) {
	s, hits := newTestService(t, authority)

	_, err := s.RunPool(context.Background(), []string{"0xnope"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "pool safety check failed: invalid pool address"), err.Error())

	_, err = s.RunSubscribe(context.Background(), []string{"not-an-email"})
	require.Error(t, err)
	assert.True(t, gateway.IsInvalidInput(err))
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestRunSentiment(t *testing.T) {
	s, _ := newTestService(t, authority)

	reply, err := s.RunSentiment(context.Background(), []string{mint})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "👍 70.0% positive")
	assert.Contains(t, reply.Text, "👎 30.0% negative")
	assert.Contains(t, reply.Text, "Score: 64.00/100 (MODERATE, orange)")
}

func TestRunSearch_TrailingLimit(t *testing.T) {
	var gotQuery, gotLimit string
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotLimit = r.URL.Query().Get("limit")
		authority(w, r)
	})

	reply, err := s.RunSearch(context.Background(), []string{"bonk", "inu", "5"})
	require.NoError(t, err)
	assert.Equal(t, "bonk inu", gotQuery)
	assert.Equal(t, "5", gotLimit)
	assert.Contains(t, reply.Text, "BONK2")

	_, err = s.RunSearch(context.Background(), []string{"42"})
	require.NoError(t, err)
	assert.Equal(t, "42", gotQuery, "a lone number is the query")
	assert.Empty(t, gotLimit)
}

func TestRunSubscribe(t *testing.T) {
	s, _ := newTestService(t, authority)

	reply, err := s.RunSubscribe(context.Background(), []string{"ops@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Subscribed ops@example.com to safety alerts.\ncheck your inbox\n", reply.Text)
}

func TestRunStatus(t *testing.T) {
	s, _ := newTestService(t, authority)

	reply, err := s.RunStatus(context.Background())
	require.NoError(t, err)
	st := reply.Data.(Status)
	assert.True(t, st.Reachable)
	assert.False(t, st.Authenticated)
	assert.Equal(t, "solana", st.Network)
	assert.Equal(t, "closed", st.Circuit.StateName)
	assert.Contains(t, reply.Text, "(reachable)")
}

func TestRunStatus_Unreachable(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	reply, err := s.RunStatus(context.Background())
	require.NoError(t, err, "an unreachable service is reported, not returned")
	assert.False(t, reply.Data.(Status).Reachable)
	assert.Contains(t, reply.Text, "(unreachable)")
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid input",
			err:  &gateway.InvalidInputError{Field: "token address", Reason: "cannot be empty"},
			want: "token analysis failed: invalid token address: cannot be empty",
		},
		{
			name: "not found",
			err:  &gateway.RemoteFetchError{Dimension: safety.DimensionRisk, Cause: &gateway.APIError{Operation: "risk", StatusCode: 404}},
			want: "token analysis failed: not found",
		},
		{
			name: "unauthorized",
			err:  &gateway.RemoteFetchError{Dimension: safety.DimensionRisk, Cause: &gateway.APIError{Operation: "risk", StatusCode: 401}},
			want: "token analysis failed: the risk service rejected the credentials, log in again or check RISK_API_TOKEN",
		},
		{
			name: "circuit open",
			err:  &gateway.RemoteFetchError{Dimension: safety.DimensionHoneypot, Cause: network.ErrCircuitOpen},
			want: "token analysis failed: the risk service is temporarily unavailable, try again in a minute",
		},
		{
			name: "remote",
			err:  &gateway.RemoteFetchError{Dimension: safety.DimensionLiquidity, Cause: errors.New("EOF")},
			want: "token analysis failed: the risk service did not answer for liquidity, try again shortly",
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: "token analysis failed, try again shortly",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FailureMessage("token analysis", tt.err))
		})
	}
}

func TestSafeGetFloat(t *testing.T) {
	m := map[string]any{
		"a":   map[string]any{"b": 1.5, "s": "2.5", "bad": "x", "flag": true},
		"top": 3.0,
	}
	v, ok := safeGetFloat(m, "a", "b")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = safeGetFloat(m, "a", "s")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	for _, path := range [][]string{{"a", "bad"}, {"a", "flag"}, {"top", "x"}, {"missing"}, {}} {
		_, ok := safeGetFloat(m, path...)
		assert.False(t, ok, "%v", path)
	}
}
