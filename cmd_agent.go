package main

import (
	"context"
	"fmt"
	"time"

	"github.com/TeneoProtocolAI/teneo-agent-sdk/pkg/agent"
	"github.com/spf13/cobra"

	"tokenshield/modules"
	"tokenshield/pkg/api"
	"tokenshield/pkg/health"
	"tokenshield/pkg/logging"
	"tokenshield/pkg/version"
)

const agentDescription = "TokenShield scores crypto token safety across honeypot, liquidity, contract, social, developer and community signals."

var agentCapabilities = []string{
	"token-safety-analysis",
	"honeypot-detection",
	"liquidity-risk",
	"contract-risk",
	"wallet-risk",
	"pool-safety",
	"website-analysis",
	"token-search",
	"safety-alerts",
}

func agentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Run the Teneo agent with the health server (default)",
		Args:  cobra.NoArgs,
		RunE:  runAgent,
	}
}

func runAgent(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, appOptions{}, func(a *app) error {
		ctx := cmd.Context()
		a.login(ctx)

		handler := NewTokenShieldAgent(a.service, a.session, logging.New("agent"))

		config := agent.DefaultConfig()
		config.Name = version.Name
		config.Description = agentDescription
		config.Capabilities = agentCapabilities
		config.PrivateKey = a.cfg.PrivateKey
		config.NFTTokenID = a.cfg.NFTTokenID
		config.OwnerAddress = a.cfg.OwnerAddress
		config.RateLimitPerMinute = a.cfg.RateLimitPerMinute

		enhancedAgent, err := agent.NewEnhancedAgent(&agent.EnhancedAgentConfig{
			Config:       config,
			AgentHandler: handler,
		})
		if err != nil {
			return fmt.Errorf("create teneo agent: %w", err)
		}

		a.logger.Info("starting TokenShield agent", "version", version.Version(), "network", a.cfg.Network)
		handler.running.Store(true)
		go func() {
			enhancedAgent.Run()
			handler.running.Store(false)
			a.logger.Warn("teneo agent loop exited")
		}()

		if len(a.cfg.AlertWatchlist) > 0 {
			startAlertWatcher(ctx, a)
		}

		return serveHealth(ctx, a, handler, agentCapabilities)
	})
}

// startAlertWatcher logs every new alert for the configured watchlist
// until ctx ends.
func startAlertWatcher(ctx context.Context, a *app) {
	logger := logging.New("watcher")
	watcher := modules.NewAlertWatcher(a.session, a.cfg.AlertWatchlist, a.cfg.AlertEmail, a.cfg.AlertPollInterval, logger)
	alerts := make(chan modules.Alert, 16)

	go watcher.Run(ctx, alerts)
	go func() {
		for {
			select {
			case al := <-alerts:
				logger.Warn("token alert", "alert", al)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// serveHealth runs the health server with the API and metrics mounted until
// ctx ends.
func serveHealth(ctx context.Context, a *app, status health.StatusGetter, capabilities []string) error {
	info := &health.AgentInfo{
		Name:         version.Name,
		Version:      version.Version(),
		Wallet:       a.cfg.OwnerAddress,
		Network:      a.cfg.Network,
		Authority:    a.cfg.RiskAPIURL,
		Capabilities: capabilities,
		Description:  agentDescription,
	}
	srv := health.NewServer(a.cfg.HealthPort, info, status,
		health.WithAPI(api.New(a.analyzer, a.session, logging.New("api")).Routes()),
		health.WithMetrics(a.metrics.Handler()),
		health.WithCircuit(a.breaker.Stats),
		health.WithLogger(logging.New("health")),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
