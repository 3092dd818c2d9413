package modules

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tokenshield/pkg/analysis"
	"tokenshield/pkg/gateway"
	"tokenshield/pkg/network"
)

// Service turns commands into replies. The agent and the CLI share it.
type Service struct {
	session  *gateway.Session
	analyzer *analysis.Analyzer
	logger   *slog.Logger
}

// NewService builds a Service. A nil logger discards output.
func NewService(session *gateway.Session, analyzer *analysis.Analyzer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{session: session, analyzer: analyzer, logger: logger}
}

// Reply is a rendered answer plus the value it was rendered from.
type Reply struct {
	Text string
	Data any
}

func (r Reply) String() string { return r.Text }

func usage(text string) (Reply, error) {
	return Reply{Text: "Usage: " + text}, nil
}

// FailureError is what a command returns when the operation failed. Its
// message is safe to show; the cause is kept for errors.Is/As.
type FailureError struct {
	Op  string
	Err error
}

func (e *FailureError) Error() string { return FailureMessage(e.Op, e.Err) }

func (e *FailureError) Unwrap() error { return e.Err }

// FailureMessage names the failed operation and what the user can do about
// it without exposing the upstream cause.
func FailureMessage(op string, err error) string {
	var (
		inErr    *gateway.InvalidInputError
		fetchErr *gateway.RemoteFetchError
	)
	switch {
	case errors.As(err, &inErr):
		return fmt.Sprintf("%s failed: %s", op, inErr.Error())
	case gateway.IsNotFound(err):
		return fmt.Sprintf("%s failed: not found", op)
	case gateway.IsUnauthorized(err):
		return fmt.Sprintf("%s failed: the risk service rejected the credentials, log in again or check RISK_API_TOKEN", op)
	case errors.Is(err, network.ErrCircuitOpen):
		return fmt.Sprintf("%s failed: the risk service is temporarily unavailable, try again in a minute", op)
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("%s failed: the risk service did not answer for %s, try again shortly", op, fetchErr.Dimension)
	default:
		return fmt.Sprintf("%s failed, try again shortly", op)
	}
}

// fail logs the cause and wraps it for display. Invalid input is the
// caller's mistake and is logged at Debug only.
func (s *Service) fail(op string, err error) error {
	if gateway.IsInvalidInput(err) {
		s.logger.Debug(op+" rejected", "error", err)
	} else {
		s.logger.Error(op+" failed", "error", err)
	}
	return &FailureError{Op: op, Err: err}
}

// splitArgs separates the rescan switch from positional words.
func splitArgs(args []string) ([]string, []gateway.FetchOption) {
	var (
		words []string
		opts  []gateway.FetchOption
	)
	for _, a := range args {
		switch strings.ToLower(strings.TrimSpace(a)) {
		case "":
		case "--rescan", "rescan":
			opts = append(opts, gateway.ForceRescan())
		default:
			words = append(words, strings.TrimSpace(a))
		}
	}
	return words, opts
}
