package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"tokenshield/modules"
	"tokenshield/pkg/analysis"
	"tokenshield/pkg/cache"
	"tokenshield/pkg/config"
	"tokenshield/pkg/gateway"
	"tokenshield/pkg/logging"
	"tokenshield/pkg/metrics"
	"tokenshield/pkg/network"
	"tokenshield/pkg/version"
)

// app holds the wired components shared by every front end.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	cache    cache.Cache
	metrics  *metrics.Metrics
	breaker  *network.CircuitBreaker
	session  *gateway.Session
	analyzer *analysis.Analyzer
	service  *modules.Service
}

type appOptions struct {
	extended bool
}

// newApp wires config into logging, cache, breaker, metrics, gateway,
// session, analyzer and the command service.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.Init(level, cfg.LogFormat, os.Stderr)

	a := &app{
		cfg:     cfg,
		logger:  logging.New("tokenshield"),
		metrics: metrics.New(),
	}

	switch {
	case cfg.RedisURL != "":
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cache.DefaultKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect response cache: %w", err)
		}
		a.cache = rc
	case cfg.CacheTTL > 0:
		a.cache = cache.NewMemoryCache()
	default:
		a.cache = cache.NoOpCache{}
	}

	if cfg.CircuitMaxFailures > 0 {
		a.breaker = network.NewCircuitBreaker(cfg.CircuitMaxFailures, cfg.CircuitResetTimeout)
	}

	client, err := gateway.New(cfg.RiskAPIURL,
		gateway.WithLogger(logging.New("gateway")),
		gateway.WithNetwork(cfg.Network),
		gateway.WithTimeout(cfg.RequestTimeout),
		gateway.WithToken(cfg.RiskAPIToken),
		gateway.WithCache(a.cache, cfg.CacheTTL),
		gateway.WithRateLimit(cfg.RateLimitPerMinute),
		gateway.WithCircuitBreaker(a.breaker),
		gateway.WithMetrics(a.metrics),
	)
	if err != nil {
		_ = a.cache.Close()
		return nil, err
	}
	a.session = gateway.NewSession(client)

	analyzerOpts := []analysis.Option{
		analysis.WithLogger(logging.New("analysis")),
		analysis.WithMetrics(a.metrics),
	}
	if cfg.PartialResults {
		analyzerOpts = append(analyzerOpts, analysis.WithPartialResults())
	}
	if opts.extended {
		analyzerOpts = append(analyzerOpts, analysis.WithDimensions(analysis.ExtendedDimensions...))
	}
	a.analyzer = analysis.NewForSession(a.session, analyzerOpts...)
	a.service = modules.NewService(a.session, a.analyzer, logging.New("modules"))

	a.logger.Debug("wired",
		"version", version.Version(),
		"authority", cfg.RiskAPIURL,
		"network", cfg.Network,
		"partial_results", cfg.PartialResults,
		"circuit", a.breaker != nil)
	return a, nil
}

// login adopts a wallet-login token when a signing key is configured and
// no static token was given. Failure leaves the session anonymous.
func (a *app) login(ctx context.Context) {
	if a.cfg.RiskAPIToken != "" {
		return
	}
	signer, err := a.cfg.Signer()
	if err != nil {
		a.logger.Warn("wallet login skipped", "error", err)
		return
	}
	if signer == nil {
		return
	}
	res, err := a.session.Login(ctx, signer)
	if err != nil {
		a.logger.Warn("wallet login failed, continuing without credentials", "error", err)
		return
	}
	a.logger.Info("wallet login succeeded", "address", res.Address, "kind", signer.Kind())
}

func (a *app) Close() error {
	return a.cache.Close()
}
