package gateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tokenshield/pkg/cache"
	"tokenshield/pkg/metrics"
	"tokenshield/pkg/network"
	"tokenshield/pkg/safety"
	"tokenshield/pkg/version"
)

const (
	// DefaultTimeout bounds every request to the authority.
	DefaultTimeout = 15 * time.Second
	// DefaultNetwork is the chain segment used in token paths.
	DefaultNetwork = "solana"
	// DefaultCacheTTL applies when WithCache is given a zero ttl.
	DefaultCacheTTL = time.Minute

	maxResponseBytes = 8 << 20
	maxRateBurst     = 10
)

// Client issues requests to the risk authority. A Client is immutable after
// New; WithCredentials returns a copy carrying a different token, so a
// request always sees the credential of the client it was issued on.
type Client struct {
	baseURL    string
	network    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	cache      cache.Cache
	cacheTTL   time.Duration
	limiter    *rate.Limiter
	breaker    *network.CircuitBreaker
	metrics    *metrics.Metrics
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient    *http.Client
	logger        *slog.Logger
	timeout       time.Duration
	network       string
	token         string
	cache         cache.Cache
	cacheTTL      time.Duration
	ratePerMinute int
	breaker       *network.CircuitBreaker
	metrics       *metrics.Metrics
}

// New creates a Client for the authority at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("gateway: baseURL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("gateway: baseURL %q must be an absolute http(s) URL", baseURL)
	}

	cfg := &clientConfig{
		timeout: DefaultTimeout,
		network: DefaultNetwork,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		network:    cfg.network,
		token:      cfg.token,
		httpClient: httpClient,
		timeout:    cfg.timeout,
		logger:     logger,
		cache:      cfg.cache,
		cacheTTL:   cfg.cacheTTL,
		breaker:    cfg.breaker,
		metrics:    cfg.metrics,
	}
	if cfg.ratePerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.ratePerMinute)/60), min(cfg.ratePerMinute, maxRateBurst))
	}
	if c.breaker != nil {
		c.breaker.SetStateChangeHandler(func(from, to network.CircuitState) {
			logger.Warn("circuit breaker state change", "from", from.String(), "to", to.String())
			c.metrics.SetCircuitState(int(to))
		})
	}
	return c, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = hc
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets the per-request timeout (default 15s).
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return fmt.Errorf("gateway: timeout must be positive, got %s", d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithNetwork sets the chain segment used in token paths.
func WithNetwork(network string) Option {
	return func(cfg *clientConfig) error {
		network = strings.ToLower(strings.TrimSpace(network))
		if network == "" {
			return fmt.Errorf("gateway: network cannot be empty")
		}
		cfg.network = network
		return nil
	}
}

// WithToken sets the initial bearer credential.
func WithToken(token string) Option {
	return func(cfg *clientConfig) error {
		cfg.token = token
		return nil
	}
}

// WithCache caches successful GET bodies for ttl. Requests made with
// ForceRescan always go to the authority.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cfg *clientConfig) error {
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		cfg.cache = c
		cfg.cacheTTL = ttl
		return nil
	}
}

// WithRateLimit caps outbound requests per minute; 0 disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(cfg *clientConfig) error {
		if perMinute < 0 {
			return fmt.Errorf("gateway: rate limit cannot be negative")
		}
		cfg.ratePerMinute = perMinute
		return nil
	}
}

// WithCircuitBreaker guards the authority with cb.
func WithCircuitBreaker(cb *network.CircuitBreaker) Option {
	return func(cfg *clientConfig) error {
		cfg.breaker = cb
		return nil
	}
}

// WithMetrics records request counts and latency in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *clientConfig) error {
		cfg.metrics = m
		return nil
	}
}

// WithCredentials returns a copy of c that sends token as its bearer
// credential. An empty token yields an anonymous client. Rate limiter,
// breaker and cache are shared with c.
func (c *Client) WithCredentials(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Authenticated reports whether the client carries a credential.
func (c *Client) Authenticated() bool { return c.token != "" }

// Network returns the chain segment used in token paths.
func (c *Client) Network() string { return c.network }

// BaseURL returns the authority root.
func (c *Client) BaseURL() string { return c.baseURL }

// CircuitStats reports the breaker state; a client without a breaker is
// always closed.
func (c *Client) CircuitStats() network.CircuitBreakerStats { return c.breaker.Stats() }

type requestIDKey struct{}

// ContextWithRequestID attaches id to ctx; requests issued with that context
// carry it in the X-Request-ID header.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by ContextWithRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// request describes one call to the authority.
type request struct {
	dimension safety.Dimension
	method    string
	path      string
	query     url.Values
	body      any
	cacheable bool
	fresh     bool
}

// url renders the target; forceRescan is appended only on the wire so the
// cache identity of a fresh read matches a normal one.
func (r request) url(base string, withRescan bool) string {
	q := r.query
	if withRescan && r.fresh {
		q = url.Values{}
		for k, v := range r.query {
			q[k] = v
		}
		q.Set("forceRescan", "true")
	}
	u := base + r.path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do runs r through cache, rate limiter and breaker and returns the raw JSON
// body. Every failure comes back as a *RemoteFetchError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	target := r.url(c.baseURL, true)
	op := r.dimension.String()

	cacheKey := c.cacheKey(r)
	useCache := r.cacheable && c.cache != nil
	if useCache && !r.fresh {
		if body, err := c.cache.Get(ctx, cacheKey); err == nil {
			c.logger.DebugContext(ctx, "cache hit", "operation", op, "url", target)
			c.metrics.RecordRequest(op, metrics.OutcomeCached, 0)
			return body, nil
		} else if !errors.Is(err, cache.ErrCacheKeyNotFound) {
			c.logger.WarnContext(ctx, "cache read failed", "operation", op, "error", err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &RemoteFetchError{Dimension: r.dimension, Cause: fmt.Errorf("%s: rate limit wait: %w", op, err)}
		}
	}

	start := time.Now()
	var body []byte
	err := c.breaker.Call(func() error {
		var callErr error
		body, callErr = c.roundTrip(ctx, r, target)
		return callErr
	}, func(err error) bool {
		// a caller that gave up says nothing about the authority
		return ctx.Err() == nil && countsAgainstCircuit(err)
	})
	elapsed := time.Since(start)

	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, network.ErrCircuitOpen) {
			outcome = metrics.OutcomeCircuitOpen
		}
		c.metrics.RecordRequest(op, outcome, elapsed)
		c.logger.WarnContext(ctx, "API request failed", "operation", op, "url", target,
			"request_id", RequestIDFromContext(ctx), "error", err)
		return nil, &RemoteFetchError{Dimension: r.dimension, Cause: err}
	}
	c.metrics.RecordRequest(op, metrics.OutcomeSuccess, elapsed)

	if useCache {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "cache write failed", "operation", op, "error", err)
		}
	}
	return body, nil
}

// cacheKey identifies a response by method, URL and credential, so clients
// with different tokens never share bodies.
func (c *Client) cacheKey(r request) string {
	key := r.method + " " + r.url(c.baseURL, false)
	if c.token == "" {
		return key
	}
	sum := sha256.Sum256([]byte(c.token))
	return key + " " + hex.EncodeToString(sum[:8])
}

// roundTrip executes one HTTP exchange bounded by the client timeout. A
// non-2xx status returns an *APIError.
func (c *Client) roundTrip(ctx context.Context, r request, target string) ([]byte, error) {
	op := r.dimension.String()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := RequestIDFromContext(ctx)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	c.logger.InfoContext(ctx, "API request", "operation", op, "method", r.method, "url", target, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API response", "operation", op, "status", resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(op, resp.StatusCode, errorMessage(data, resp.Status))
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: decode response: body is not valid JSON", op)
	}
	return data, nil
}

// errorMessage pulls a readable message out of an error body.
func errorMessage(data []byte, status string) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		return msg
	}
	return status
}
