package events

import (
	"log/slog"
)

// LogPublisher is used when no broker is configured: events are logged and
// counted but go nowhere. Mirrors the behavior of running without Pub/Sub
// credentials in earlier deployments.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(topic string, event Event) {
	p.logger.Info("event (publisher disabled, logged only)",
		"topic", topic,
		"event_type", event.Type,
		"data", event.Data)
	publishedTotal.WithLabelValues(topic).Inc()
}
