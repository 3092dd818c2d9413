package modules

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenshield/pkg/gateway"
)

const bonk = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

// alertFeed serves a mutable alert list per token.
type alertFeed struct {
	mu     sync.Mutex
	alerts map[string]string
}

func (f *alertFeed) set(token, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts[token] = body
}

func (f *alertFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	body, ok := f.alerts[token]
	if !ok {
		http.Error(w, `{"message":"unknown token"}`, http.StatusNotFound)
		return
	}
	_, _ = w.Write([]byte(body))
}

func newWatcher(t *testing.T, feed *alertFeed, tokens ...string) *AlertWatcher {
	t.Helper()
	server := httptest.NewServer(feed)
	t.Cleanup(server.Close)
	client, err := gateway.New(server.URL, gateway.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return NewAlertWatcher(gateway.NewSession(client), tokens, "", time.Hour, nil)
}

func ids(alerts []Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}

func TestAlertWatcher_Poll(t *testing.T) {
	feed := &alertFeed{alerts: map[string]string{
		mint: `{"alerts": [{"id": "a1", "severity": "high", "message": "liquidity pulled"}]}`,
		bonk: `[{"id": 7}]`,
	}}
	w := newWatcher(t, feed, mint, bonk)
	ctx := context.Background()

	alerts, err := w.Poll(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a1", "7"}, ids(alerts)); diff != "" {
		t.Errorf("first poll (-want +got):\n%s", diff)
	}
	assert.Equal(t, "high", alerts[0].Severity)
	assert.Equal(t, "liquidity pulled", alerts[0].Message)
	assert.Equal(t, mint, alerts[0].Token)
	assert.Equal(t, "solana", alerts[0].Network)

	alerts, err = w.Poll(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts, "nothing new")

	feed.set(mint, `{"alerts": [{"id": "a1"}, {"id": "a2"}, {"id": "a2"}]}`)
	alerts, err = w.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, ids(alerts))
}

func TestAlertWatcher_PartialFailure(t *testing.T) {
	feed := &alertFeed{alerts: map[string]string{
		bonk: `{"alerts": [{"kind": "whale", "amount": 12}]}`,
	}}
	w := newWatcher(t, feed, mint, bonk)

	alerts, err := w.Poll(context.Background())
	require.Error(t, err)
	assert.True(t, gateway.IsNotFound(err))
	require.Len(t, alerts, 1)
	assert.Equal(t, `{"amount":12,"kind":"whale"}`, alerts[0].ID, "falls back to canonical JSON")
}

func TestAlertWatcher_Run(t *testing.T) {
	feed := &alertFeed{alerts: map[string]string{mint: `{"alerts": [{"id": "a1"}]}`}}
	w := newWatcher(t, feed, mint)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Alert)
	done := make(chan struct{})
	go func() {
		w.Run(ctx, out)
		close(done)
	}()

	select {
	case a := <-out:
		assert.Equal(t, "a1", a.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no alert from the first poll")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
