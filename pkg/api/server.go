package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tokenshield/pkg/analysis"
	"tokenshield/pkg/gateway"
	"tokenshield/pkg/safety"
)

// Server exposes analyses and single-dimension reads as JSON over HTTP.
type Server struct {
	analyzer *analysis.Analyzer
	session  *gateway.Session
	logger   *slog.Logger
}

// New builds a Server. A nil logger discards output.
func New(analyzer *analysis.Analyzer, session *gateway.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{analyzer: analyzer, session: session, logger: logger}
}

// Routes returns the /v1 router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tokens/{address}", s.analyzeToken)
		r.Get("/tokens/{address}/history", s.tokenHistory)
		r.Get("/tokens/{address}/dimensions/{dimension}", s.tokenDimension)
		r.Get("/pools/{address}", s.poolSafety)
		r.Get("/wallets/{address}", s.walletRisk)
		r.Get("/websites", s.website)
		r.Get("/search", s.search)
		r.Get("/networks", s.networks)
	})
	return r
}

// ReportResponse wraps a single sub-report with its tier.
type ReportResponse struct {
	Dimension safety.Dimension `json:"dimension"`
	Score     *float64         `json:"score,omitempty"`
	Level     safety.Level     `json:"safetyLevel,omitempty"`
	Color     safety.Color     `json:"safetyColor,omitempty"`
	Data      safety.SubReport `json:"data"`
}

func newReportResponse(r safety.SubReport) ReportResponse {
	resp := ReportResponse{Dimension: r.Dimension, Score: r.Score, Data: r}
	if r.Scored() {
		resp.Level = safety.Classify(*r.Score)
		resp.Color = resp.Level.Color()
	}
	return resp
}

func (s *Server) analyzeToken(w http.ResponseWriter, r *http.Request) {
	record, err := s.analyzer.Analyze(r.Context(), chi.URLParam(r, "address"), fetchOptions(r)...)
	if err != nil {
		s.writeError(w, r, "token analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) tokenHistory(w http.ResponseWriter, r *http.Request) {
	report, err := s.session.Client().History(r.Context(), chi.URLParam(r, "address"), r.URL.Query().Get("timeframe"), fetchOptions(r)...)
	if err != nil {
		s.writeError(w, r, "history lookup", err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) tokenDimension(w http.ResponseWriter, r *http.Request) {
	dim := safety.Dimension(chi.URLParam(r, "dimension"))
	report, err := s.session.Client().FetchDimension(r.Context(), dim, chi.URLParam(r, "address"), fetchOptions(r)...)
	if err != nil {
		s.writeError(w, r, fmt.Sprintf("%s lookup", dim), err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) poolSafety(w http.ResponseWriter, r *http.Request) {
	report, err := s.session.Client().PoolSafety(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, r, "pool safety check", err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) walletRisk(w http.ResponseWriter, r *http.Request) {
	report, err := s.session.Client().WalletRisk(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, r, "wallet risk check", err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) website(w http.ResponseWriter, r *http.Request) {
	report, err := s.session.Client().Website(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		s.writeError(w, r, "website analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, "token search", &gateway.InvalidInputError{Field: "limit", Value: raw, Reason: "must be a number"})
			return
		}
		limit = n
	}
	res, err := s.session.Client().Search(r.Context(), r.URL.Query().Get("query"), limit)
	if err != nil {
		s.writeError(w, r, "token search", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) networks(w http.ResponseWriter, r *http.Request) {
	res, err := s.session.Client().Networks(r.Context())
	if err != nil {
		s.writeError(w, r, "network listing", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func fetchOptions(r *http.Request) []gateway.FetchOption {
	if rescan, _ := strconv.ParseBool(r.URL.Query().Get("rescan")); rescan {
		return []gateway.FetchOption{gateway.ForceRescan()}
	}
	return nil
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// writeError maps err to a status and a generic message naming op; the
// cause is only logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	reqID := middleware.GetReqID(r.Context())

	var (
		inErr    *gateway.InvalidInputError
		fetchErr *gateway.RemoteFetchError
	)
	switch {
	case errors.As(err, &inErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("%s failed: %s", op, inErr.Error()), RequestID: reqID})
	case gateway.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("%s failed: not found", op), RequestID: reqID})
	case errors.As(err, &fetchErr):
		s.logger.ErrorContext(r.Context(), op+" failed", "dimension", fetchErr.Dimension, "error", err, "request_id", reqID)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:     fmt.Sprintf("%s failed: the risk service did not answer for %s, try again shortly", op, fetchErr.Dimension),
			RequestID: reqID,
		})
	default:
		s.logger.ErrorContext(r.Context(), op+" failed", "error", err, "request_id", reqID)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: op + " failed", RequestID: reqID})
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
