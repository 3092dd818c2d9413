package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"tokenshield/pkg/network"
)

// Server provides health monitoring endpoints and hosts the JSON API.
type Server struct {
	port         int
	agentInfo    *AgentInfo
	statusGetter StatusGetter
	circuit      func() network.CircuitBreakerStats
	metrics      http.Handler
	api          http.Handler
	logger       *slog.Logger
	now          func() time.Time

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// AgentInfo contains basic agent information
type AgentInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Wallet       string   `json:"wallet,omitempty"`
	Network      string   `json:"network"`
	Authority    string   `json:"authority"`
	Capabilities []string `json:"capabilities"`
	Description  string   `json:"description"`
}

// StatusGetter reports the live state of the process.
type StatusGetter interface {
	// IsConnected reports whether the front end (agent loop or API) is serving.
	IsConnected() bool
	// IsAuthenticated reports whether a usable risk API credential is held.
	IsAuthenticated() bool
	GetActiveTaskCount() int
	GetUptime() time.Duration
}

// HealthStatus represents the detailed status document.
type HealthStatus struct {
	Status        string                      `json:"status"`
	Connected     bool                        `json:"connected"`
	Authenticated bool                        `json:"authenticated"`
	ActiveTasks   int                         `json:"active_tasks"`
	Uptime        string                      `json:"uptime"`
	Circuit       network.CircuitBreakerStats `json:"circuit"`
	Timestamp     time.Time                   `json:"timestamp"`
	Agent         AgentInfo                   `json:"agent"`
}

// Option configures a Server.
type Option func(*Server)

// WithAPI forwards /v1/* to h unchanged.
func WithAPI(h http.Handler) Option {
	return func(s *Server) { s.api = h }
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithCircuit reports breaker state in /health and /status.
func WithCircuit(stats func() network.CircuitBreakerStats) Option {
	return func(s *Server) { s.circuit = stats }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new health monitoring server
func NewServer(port int, agentInfo *AgentInfo, statusGetter StatusGetter, opts ...Option) *Server {
	s := &Server{
		port:         port,
		agentInfo:    agentInfo,
		statusGetter: statusGetter,
		circuit:      func() network.CircuitBreakerStats { return (*network.CircuitBreaker)(nil).Stats() },
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.rootHandler)
	r.Get("/health", s.healthHandler)
	r.Get("/status", s.statusHandler)
	r.Get("/info", s.infoHandler)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	if s.api != nil {
		r.Handle("/v1/*", s.api)
	}
	return r
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("starting health server", "port", s.port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.server
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// rootHandler prints a plain-text summary
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "%s v%s\n", s.agentInfo.Name, s.agentInfo.Version)
	fmt.Fprintf(w, "Network: %s\n", s.agentInfo.Network)
	fmt.Fprintf(w, "Connected: %v\n", s.statusGetter.IsConnected())
	fmt.Fprintf(w, "Authenticated: %v\n", s.statusGetter.IsAuthenticated())
	fmt.Fprintf(w, "Active Tasks: %d\n", s.statusGetter.GetActiveTaskCount())
	fmt.Fprintf(w, "Circuit: %s\n", s.circuit().StateName)
	fmt.Fprintf(w, "Capabilities: %s\n", strings.Join(s.agentInfo.Capabilities, ", "))
	fmt.Fprintf(w, "Uptime: %v\n", s.statusGetter.GetUptime().Round(time.Second))
	fmt.Fprintf(w, "\nEndpoints:\n")
	fmt.Fprintf(w, "  /health  - Health check\n")
	fmt.Fprintf(w, "  /status  - Detailed status (JSON)\n")
	fmt.Fprintf(w, "  /info    - Agent information (JSON)\n")
	if s.metrics != nil {
		fmt.Fprintf(w, "  /metrics - Prometheus metrics\n")
	}
	if s.api != nil {
		fmt.Fprintf(w, "  /v1/...  - Token safety API (JSON)\n")
	}
}

// state folds connection and breaker state into one word and an HTTP code.
func (s *Server) state() (string, int) {
	if !s.statusGetter.IsConnected() {
		return "disconnected", http.StatusServiceUnavailable
	}
	if s.circuit().State == network.CircuitOpen {
		return "degraded", http.StatusOK
	}
	return "healthy", http.StatusOK
}

// healthHandler provides a simple health check
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := s.state()
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC(),
		"agent":     s.agentInfo.Name,
	})
}

// statusHandler provides detailed status information
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status, _ := s.state()
	writeJSON(w, http.StatusOK, HealthStatus{
		Status:        status,
		Connected:     s.statusGetter.IsConnected(),
		Authenticated: s.statusGetter.IsAuthenticated(),
		ActiveTasks:   s.statusGetter.GetActiveTaskCount(),
		Uptime:        s.statusGetter.GetUptime().Round(time.Second).String(),
		Circuit:       s.circuit(),
		Timestamp:     s.now().UTC(),
		Agent:         *s.agentInfo,
	})
}

// infoHandler provides agent information
func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agentInfo)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
