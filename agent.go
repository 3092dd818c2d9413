package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"tokenshield/modules"
	"tokenshield/pkg/gateway"
)

// TokenShieldAgent answers Teneo tasks with token safety reports.
type TokenShieldAgent struct {
	service *modules.Service
	session *gateway.Session
	logger  *slog.Logger
	started time.Time

	running atomic.Bool
	active  atomic.Int32
}

func NewTokenShieldAgent(service *modules.Service, session *gateway.Session, logger *slog.Logger) *TokenShieldAgent {
	return &TokenShieldAgent{
		service: service,
		session: session,
		logger:  logger,
		started: time.Now(),
	}
}

// ProcessTask routes one chat command. Failures come back as a readable
// reply rather than an error so the user always gets an answer.
func (a *TokenShieldAgent) ProcessTask(ctx context.Context, task string) (string, error) {
	a.active.Add(1)
	defer a.active.Add(-1)
	a.logger.Info("processing task", "task", task)

	task = strings.TrimSpace(task)
	task = strings.TrimPrefix(task, "/")
	parts := strings.Fields(task)
	if len(parts) == 0 {
		return "No command provided.\n\n" + modules.HelpText(), nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var (
		reply modules.Reply
		err   error
	)
	switch cmd {
	case "analyze", "scan":
		reply, err = a.service.RunAnalyze(ctx, args)
	case "risk", "riskcheck":
		reply, err = a.service.RunRisk(ctx, args)
	case "sentiment":
		reply, err = a.service.RunSentiment(ctx, args)
	case "history":
		reply, err = a.service.RunHistory(ctx, args)
	case "dimension":
		reply, err = a.service.RunDimension(ctx, args)
	case "pool":
		reply, err = a.service.RunPool(ctx, args)
	case "wallet":
		reply, err = a.service.RunWallet(ctx, args)
	case "website":
		reply, err = a.service.RunWebsite(ctx, args)
	case "search":
		reply, err = a.service.RunSearch(ctx, args)
	case "alerts", "alert":
		reply, err = a.service.RunAlerts(ctx, args)
	case "subscribe":
		reply, err = a.service.RunSubscribe(ctx, args)
	case "networks":
		reply, err = a.service.RunNetworks(ctx)
	case "usage":
		reply, err = a.service.RunUsage(ctx)
	case "status":
		reply, err = a.service.RunStatus(ctx)
	case "help":
		return modules.HelpText(), nil
	default:
		return fmt.Sprintf("Unknown command '%s'.\n\n%s", cmd, modules.HelpText()), nil
	}

	if err != nil {
		var fe *modules.FailureError
		if errors.As(err, &fe) {
			return fe.Error(), nil
		}
		return "", err
	}
	return reply.Text, nil
}

func (a *TokenShieldAgent) IsConnected() bool { return a.running.Load() }

func (a *TokenShieldAgent) IsAuthenticated() bool { return a.session.Authenticated() }

func (a *TokenShieldAgent) GetActiveTaskCount() int { return int(a.active.Load()) }

func (a *TokenShieldAgent) GetUptime() time.Duration { return time.Since(a.started) }
