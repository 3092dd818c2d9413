package modules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tokenshield/pkg/gateway"
)

// Alert is one alert raised by the risk service for a watched token.
type Alert struct {
	ID       string         `json:"id"`
	Token    string         `json:"token"`
	Network  string         `json:"network"`
	Severity string         `json:"severity,omitempty"`
	Message  string         `json:"message,omitempty"`
	Fields   map[string]any `json:"fields"`
	SeenAt   time.Time      `json:"seenAt"` // when the watcher first saw it
}

// LogValue keeps log lines short; Fields is left out.
func (a Alert) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID),
		slog.String("token", a.Token),
		slog.String("severity", a.Severity),
		slog.String("message", a.Message),
	)
}

// alertsFrom reads the alert objects out of an alerts payload. The service
// answers either {"alerts": [...]} or a bare list, which the gateway wraps
// under "items".
func alertsFrom(token, network string, p gateway.Payload, seenAt time.Time) []Alert {
	list, ok := p["alerts"].([]any)
	if !ok {
		list, _ = p["items"].([]any)
	}
	out := make([]Alert, 0, len(list))
	for _, item := range list {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		a := Alert{
			ID:      alertID(fields),
			Token:   token,
			Network: network,
			Fields:  fields,
			SeenAt:  seenAt,
		}
		a.Severity, _ = safeGetString(fields, "severity")
		a.Message, _ = safeGetString(fields, "message")
		out = append(out, a)
	}
	return out
}

// alertID prefers the service's id and falls back to the canonical JSON of
// the alert, which encoding/json emits with sorted keys.
func alertID(fields map[string]any) string {
	switch id := fields["id"].(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	raw, _ := json.Marshal(fields)
	return string(raw)
}
