package main

import (
	"context"

	"github.com/spf13/cobra"

	"tokenshield/modules"
)

// serviceRun is a command method of modules.Service.
type serviceRun func(s *modules.Service, ctx context.Context, args []string) (modules.Reply, error)

// queryFeatures selects the optional flags of a query command.
type queryFeatures struct {
	rescan   bool
	extended bool
}

// queryCommand builds a one-shot command that prints a Service reply.
func queryCommand(use, short string, args cobra.PositionalArgs, run serviceRun, features queryFeatures) *cobra.Command {
	var rescan, extended bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, appOptions{extended: extended}, func(a *app) error {
				a.login(cmd.Context())
				if rescan {
					args = append(args, "--rescan")
				}
				reply, err := run(a.service, cmd.Context(), args)
				if err != nil {
					return err
				}
				return printReply(cmd, reply)
			})
		},
	}
	f := cmd.Flags()
	if features.rescan {
		f.BoolVar(&rescan, "rescan", false, "Bypass cached results and ask the risk service to rescan")
	}
	if features.extended {
		f.BoolVar(&extended, "extended", false, "Also fetch audit, team, funding, compliance and sentiment")
	}
	return cmd
}

func noArgs(run func(*modules.Service, context.Context) (modules.Reply, error)) serviceRun {
	return func(s *modules.Service, ctx context.Context, _ []string) (modules.Reply, error) {
		return run(s, ctx)
	}
}

func queryCmds() []*cobra.Command {
	rescannable := queryFeatures{rescan: true}
	return []*cobra.Command{
		queryCommand("analyze <address>", "Full safety analysis with overall score",
			cobra.ExactArgs(1), (*modules.Service).RunAnalyze, queryFeatures{rescan: true, extended: true}),
		queryCommand("risk <address>", "Risk assessment for a token",
			cobra.ExactArgs(1), (*modules.Service).RunRisk, rescannable),
		queryCommand("sentiment <address>", "Market sentiment for a token",
			cobra.ExactArgs(1), (*modules.Service).RunSentiment, rescannable),
		queryCommand("history <address> [timeframe]", "Historical safety data",
			cobra.RangeArgs(1, 2), (*modules.Service).RunHistory, rescannable),
		queryCommand("dimension <name> <address>", "One named token dimension",
			cobra.ExactArgs(2), (*modules.Service).RunDimension, rescannable),
		queryCommand("pool <address>", "Liquidity pool safety",
			cobra.ExactArgs(1), (*modules.Service).RunPool, queryFeatures{}),
		queryCommand("wallet <address>", "Wallet risk profile",
			cobra.ExactArgs(1), (*modules.Service).RunWallet, queryFeatures{}),
		queryCommand("website <url>", "Project website analysis",
			cobra.ExactArgs(1), (*modules.Service).RunWebsite, queryFeatures{}),
		queryCommand("search <query> [limit]", "Find tokens by name, symbol or address",
			cobra.MinimumNArgs(1), (*modules.Service).RunSearch, queryFeatures{}),
		queryCommand("alerts <address> [email]", "Alerts raised for a token",
			cobra.RangeArgs(1, 2), (*modules.Service).RunAlerts, queryFeatures{}),
		queryCommand("subscribe <email>", "Receive alerts by email",
			cobra.ExactArgs(1), (*modules.Service).RunSubscribe, queryFeatures{}),
		queryCommand("networks", "Supported chains",
			cobra.NoArgs, noArgs((*modules.Service).RunNetworks), queryFeatures{}),
		queryCommand("usage", "API usage for the current credentials",
			cobra.NoArgs, noArgs((*modules.Service).RunUsage), queryFeatures{}),
		queryCommand("status", "Risk service and session status",
			cobra.NoArgs, noArgs((*modules.Service).RunStatus), queryFeatures{}),
	}
}
