package modules

import (
	"context"
	"fmt"
)

// RunPool checks the safety of a liquidity pool.
func (s *Service) RunPool(ctx context.Context, args []string) (Reply, error) {
	words, _ := splitArgs(args)
	if len(words) == 0 {
		return usage("pool [pool address]")
	}
	report, err := s.session.Client().PoolSafety(ctx, words[0])
	if err != nil {
		return Reply{}, s.fail("pool safety check", err)
	}
	return Reply{Text: FormatReport(fmt.Sprintf("Pool safety for %s", words[0]), report), Data: report}, nil
}

// RunWallet reads the risk profile of a wallet.
func (s *Service) RunWallet(ctx context.Context, args []string) (Reply, error) {
	words, _ := splitArgs(args)
	if len(words) == 0 {
		return usage("wallet [wallet address]")
	}
	report, err := s.session.Client().WalletRisk(ctx, words[0])
	if err != nil {
		return Reply{}, s.fail("wallet risk check", err)
	}
	return Reply{Text: FormatReport(fmt.Sprintf("Wallet risk for %s", words[0]), report), Data: report}, nil
}

// RunWebsite analyzes a project website.
func (s *Service) RunWebsite(ctx context.Context, args []string) (Reply, error) {
	words, _ := splitArgs(args)
	if len(words) == 0 {
		return usage("website [url]. Example: website https://example.org")
	}
	report, err := s.session.Client().Website(ctx, words[0])
	if err != nil {
		return Reply{}, s.fail("website analysis", err)
	}
	return Reply{Text: FormatReport(fmt.Sprintf("Website analysis for %s", words[0]), report), Data: report}, nil
}

// RunHistory reads historical safety data, optionally for a timeframe such
// as 7d.
func (s *Service) RunHistory(ctx context.Context, args []string) (Reply, error) {
	words, opts := splitArgs(args)
	if len(words) == 0 {
		return usage("history [token address] [timeframe] [--rescan]. Example: history <address> 7d")
	}
	timeframe := ""
	if len(words) > 1 {
		timeframe = words[1]
	}
	report, err := s.session.Client().History(ctx, words[0], timeframe, opts...)
	if err != nil {
		return Reply{}, s.fail("history lookup", err)
	}
	title := fmt.Sprintf("Safety history for %s", words[0])
	if timeframe != "" {
		title += " (" + timeframe + ")"
	}
	return Reply{Text: FormatReport(title, report), Data: report}, nil
}
