package modules

import (
	"context"
	"fmt"

	"tokenshield/pkg/safety"
)

// RunRisk reads the authority's risk assessment for a token.
func (s *Service) RunRisk(ctx context.Context, args []string) (Reply, error) {
	words, opts := splitArgs(args)
	if len(words) == 0 {
		return usage("risk [token address] [--rescan]")
	}

	report, err := s.session.Client().Risk(ctx, words[0], opts...)
	if err != nil {
		return Reply{}, s.fail("risk check", err)
	}
	return Reply{Text: FormatReport(fmt.Sprintf("Risk assessment for %s", words[0]), report), Data: report}, nil
}

// RunDimension reads one named token dimension.
func (s *Service) RunDimension(ctx context.Context, args []string) (Reply, error) {
	words, opts := splitArgs(args)
	if len(words) < 2 {
		return usage("dimension [name] [token address] [--rescan]")
	}

	dim := safety.Dimension(words[0])
	report, err := s.session.Client().FetchDimension(ctx, dim, words[1], opts...)
	if err != nil {
		return Reply{}, s.fail(fmt.Sprintf("%s lookup", dim), err)
	}
	return Reply{Text: FormatReport(fmt.Sprintf("%s report for %s", dim, words[1]), report), Data: report}, nil
}
