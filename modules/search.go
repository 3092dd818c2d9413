package modules

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// RunSearch looks tokens up by name, symbol or address. A trailing number
// is taken as the result limit.
func (s *Service) RunSearch(ctx context.Context, args []string) (Reply, error) {
	words, _ := splitArgs(args)
	if len(words) == 0 {
		return usage("search [query] [limit]. Example: search bonk 5")
	}
	limit := 0
	if len(words) > 1 {
		if n, err := strconv.Atoi(words[len(words)-1]); err == nil {
			limit = n
			words = words[:len(words)-1]
		}
	}
	query := strings.Join(words, " ")

	res, err := s.session.Client().Search(ctx, query, limit)
	if err != nil {
		return Reply{}, s.fail("token search", err)
	}
	return Reply{Text: FormatPayload(fmt.Sprintf("Search results for %q", query), res), Data: res}, nil
}
