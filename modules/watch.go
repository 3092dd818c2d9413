package modules

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"tokenshield/pkg/gateway"
)

// DefaultPollInterval is used when the watcher is given none.
const DefaultPollInterval = 5 * time.Minute

// AlertWatcher polls the alerts of a watchlist and reports the ones it has
// not seen before.
type AlertWatcher struct {
	session  *gateway.Session
	tokens   []string
	email    string
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu sync.Mutex
	// seen holds, per token, the alert ids of the latest successful poll.
	seen map[string]map[string]struct{}
}

// NewAlertWatcher builds a watcher for tokens. email narrows the alerts to
// one subscriber and may be empty.
func NewAlertWatcher(session *gateway.Session, tokens []string, email string, interval time.Duration, logger *slog.Logger) *AlertWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AlertWatcher{
		session:  session,
		tokens:   append([]string(nil), tokens...),
		email:    email,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		seen:     make(map[string]map[string]struct{}),
	}
}

// Poll checks every token once and returns the alerts that are new since
// the previous poll. A failing token is skipped and its error joined into
// the result; the others are still checked.
func (w *AlertWatcher) Poll(ctx context.Context) ([]Alert, error) {
	client := w.session.Client()
	var (
		fresh []Alert
		errs  []error
	)
	for _, token := range w.tokens {
		p, err := client.Alerts(ctx, token, w.email)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fresh = append(fresh, w.remember(token, alertsFrom(token, client.Network(), p, w.now().UTC()))...)
	}
	return fresh, errors.Join(errs...)
}

// remember replaces the seen set for token and returns the alerts absent
// from the previous one.
func (w *AlertWatcher) remember(token string, alerts []Alert) []Alert {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.seen[token]
	next := make(map[string]struct{}, len(alerts))
	var fresh []Alert
	for _, a := range alerts {
		if _, dup := next[a.ID]; dup {
			continue
		}
		next[a.ID] = struct{}{}
		if _, ok := prev[a.ID]; !ok {
			fresh = append(fresh, a)
		}
	}
	w.seen[token] = next
	return fresh
}

// Run polls immediately and then every interval, sending new alerts to out
// until ctx is done. It does not close out.
func (w *AlertWatcher) Run(ctx context.Context, out chan<- Alert) {
	w.logger.Info("starting alert watcher", "tokens", w.tokens, "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		alerts, err := w.Poll(ctx)
		if err != nil && ctx.Err() == nil {
			w.logger.Warn("alert poll incomplete", "error", err)
		}
		for _, a := range alerts {
			select {
			case out <- a:
			case <-ctx.Done():
				w.logger.Info("alert watcher stopped")
				return
			}
		}

		select {
		case <-ctx.Done():
			w.logger.Info("alert watcher stopped")
			return
		case <-ticker.C:
		}
	}
}
