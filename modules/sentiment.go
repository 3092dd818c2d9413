package modules

import (
	"context"
	"fmt"
	"strings"
)

// RunSentiment reads market sentiment for a token.
func (s *Service) RunSentiment(ctx context.Context, args []string) (Reply, error) {
	words, opts := splitArgs(args)
	if len(words) == 0 {
		return usage("sentiment [token address] [--rescan]")
	}

	report, err := s.session.Client().Sentiment(ctx, words[0], opts...)
	if err != nil {
		return Reply{}, s.fail("sentiment lookup", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sentiment for %s\n", words[0])
	if pos, ok := safeGetFloat(report.Fields, "sentiment", "positive"); ok {
		fmt.Fprintf(&b, "👍 %.1f%% positive\n", pos)
	}
	if neg, ok := safeGetFloat(report.Fields, "sentiment", "negative"); ok {
		fmt.Fprintf(&b, "👎 %.1f%% negative\n", neg)
	}
	b.WriteString(FormatReport("Details:", report))
	return Reply{Text: b.String(), Data: report}, nil
}
