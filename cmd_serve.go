package main

import (
	"time"

	"github.com/spf13/cobra"

	"tokenshield/pkg/gateway"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, health and metrics endpoints without joining the Teneo network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, appOptions{}, func(a *app) error {
				a.login(cmd.Context())
				a.logger.Info("starting TokenShield API", "port", a.cfg.HealthPort)
				return serveHealth(cmd.Context(), a, newServeStatus(a.session), []string{"http-api"})
			})
		},
	}
}

// serveStatus reports health for the API-only mode.
type serveStatus struct {
	session *gateway.Session
	started time.Time
}

func newServeStatus(session *gateway.Session) *serveStatus {
	return &serveStatus{session: session, started: time.Now()}
}

func (s *serveStatus) IsConnected() bool { return true }

func (s *serveStatus) IsAuthenticated() bool { return s.session.Authenticated() }

// GetActiveTaskCount is always 0; API requests are not tasks.
func (s *serveStatus) GetActiveTaskCount() int { return 0 }

func (s *serveStatus) GetUptime() time.Duration { return time.Since(s.started) }
