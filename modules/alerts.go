package modules

import (
	"context"
	"fmt"
)

// RunAlerts lists alerts for a token, optionally for one subscriber.
func (s *Service) RunAlerts(ctx context.Context, args []string) (Reply, error) {
	words, _ := splitArgs(args)
	if len(words) == 0 {
		return usage("alerts [token address] [email]")
	}
	email := ""
	if len(words) > 1 {
		email = words[1]
	}
	res, err := s.session.Client().Alerts(ctx, words[0], email)
	if err != nil {
		return Reply{}, s.fail("alert lookup", err)
	}
	return Reply{Text: FormatPayload(fmt.Sprintf("Alerts for %s", words[0]), res), Data: res}, nil
}

// RunSubscribe registers an email for alert delivery.
func (s *Service) RunSubscribe(ctx context.Context, args []string) (Reply, error) {
	words, _ := splitArgs(args)
	if len(words) == 0 {
		return usage("subscribe [email]")
	}
	res, err := s.session.Client().Subscribe(ctx, words[0])
	if err != nil {
		return Reply{}, s.fail("alert subscription", err)
	}
	text := fmt.Sprintf("Subscribed %s to safety alerts.\n", words[0])
	if msg, ok := safeGetString(res, "message"); ok {
		text += msg + "\n"
	}
	return Reply{Text: text, Data: res}, nil
}
