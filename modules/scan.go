package modules

import (
	"context"
)

// RunAnalyze performs a full safety analysis of a token.
func (s *Service) RunAnalyze(ctx context.Context, args []string) (Reply, error) {
	words, opts := splitArgs(args)
	if len(words) == 0 {
		return usage("analyze [token address] [--rescan]. Example: analyze EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	}

	record, err := s.analyzer.Analyze(ctx, words[0], opts...)
	if err != nil {
		return Reply{}, s.fail("token analysis", err)
	}
	s.logger.Info("token analyzed",
		"token", record.TokenAddress,
		"analysis_id", record.AnalysisID,
		"score", record.OverallScore,
		"level", record.Level)
	return Reply{Text: FormatRecord(record), Data: record}, nil
}
