package modules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tokenshield/pkg/network"
	"tokenshield/pkg/version"
)

// RunNetworks lists the chains the risk service supports.
func (s *Service) RunNetworks(ctx context.Context) (Reply, error) {
	res, err := s.session.Client().Networks(ctx)
	if err != nil {
		return Reply{}, s.fail("network listing", err)
	}
	return Reply{Text: FormatPayload("Supported networks", res), Data: res}, nil
}

// RunUsage reports API usage for the current credentials.
func (s *Service) RunUsage(ctx context.Context) (Reply, error) {
	res, err := s.session.Client().Usage(ctx)
	if err != nil {
		return Reply{}, s.fail("usage lookup", err)
	}
	return Reply{Text: FormatPayload("API usage", res), Data: res}, nil
}

// Status is the data behind the status command.
type Status struct {
	Version       string                      `json:"version"`
	Network       string                      `json:"network"`
	Authority     string                      `json:"authority"`
	Reachable     bool                        `json:"reachable"`
	Authenticated bool                        `json:"authenticated"`
	ExpiresAt     *time.Time                  `json:"expiresAt,omitempty"`
	Circuit       network.CircuitBreakerStats `json:"circuit"`
	Remote        map[string]any              `json:"remote,omitempty"`
}

// RunStatus reports local session state and whether the risk service
// answers. An unreachable service is part of the answer, not a failure.
func (s *Service) RunStatus(ctx context.Context) (Reply, error) {
	client := s.session.Client()
	st := Status{
		Version:       version.Version(),
		Network:       client.Network(),
		Authority:     client.BaseURL(),
		Authenticated: s.session.Authenticated(),
		Circuit:       client.CircuitStats(),
	}
	if exp := s.session.ExpiresAt(); !exp.IsZero() {
		st.ExpiresAt = &exp
	}
	if remote, err := client.Health(ctx); err != nil {
		s.logger.Warn("risk service health check failed", "error", err)
	} else {
		st.Reachable = true
		st.Remote = remote
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TokenShield v%s\n", st.Version)
	fmt.Fprintf(&b, "Risk service: %s (%s)\n", st.Authority, reachability(st.Reachable))
	fmt.Fprintf(&b, "Network: %s\n", st.Network)
	fmt.Fprintf(&b, "Authenticated: %v", st.Authenticated)
	if st.ExpiresAt != nil {
		fmt.Fprintf(&b, " (until %s)", st.ExpiresAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Circuit: %s (%d consecutive failures)\n", st.Circuit.StateName, st.Circuit.Failures)
	return Reply{Text: b.String(), Data: st}, nil
}

func reachability(ok bool) string {
	if ok {
		return "reachable"
	}
	return "unreachable"
}

// HelpText lists the agent commands.
func HelpText() string {
	return strings.Join([]string{
		"TokenShield commands:",
		"  analyze [address] [--rescan]    full safety analysis with overall score",
		"  risk [address] [--rescan]       risk assessment",
		"  sentiment [address] [--rescan]  market sentiment",
		"  history [address] [timeframe]   historical safety data",
		"  dimension [name] [address]      one named dimension",
		"  pool [address]                  liquidity pool safety",
		"  wallet [address]                wallet risk profile",
		"  website [url]                   project website analysis",
		"  search [query] [limit]          find tokens",
		"  alerts [address] [email]        alerts raised for a token",
		"  subscribe [email]               receive alerts by email",
		"  networks                        supported chains",
		"  usage                           API usage",
		"  status                          service and session status",
		"  help                            this list",
	}, "\n")
}
