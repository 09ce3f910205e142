package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"shuttle-service/internal/pkg/config"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shuttle_events_published_total",
		Help: "Lifecycle events successfully published, by topic.",
	}, []string{"topic"})
	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shuttle_events_dropped_total",
		Help: "Lifecycle events dropped after exhausting publish attempts, by topic.",
	}, []string{"topic"})
)

type NATSPublisher struct {
	conn        *nats.Conn
	maxAttempts int
	timeout     time.Duration
	logger      *slog.Logger
}

func NewNATSPublisher(cfg config.EventsConfig, logger *slog.Logger) (*NATSPublisher, func(), error) {
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Timeout(cfg.PublishTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		conn.Close()
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return &NATSPublisher{
		conn:        conn,
		maxAttempts: maxAttempts,
		timeout:     cfg.PublishTimeout,
		logger:      logger,
	}, cleanup, nil
}

func (p *NATSPublisher) Publish(topic string, event Event) {
	payload, err := json.Marshal(newEnvelope(event))
	if err != nil {
		p.logger.Error("failed to marshal event, dropping", "topic", topic, "event_type", event.Type, "error", err)
		droppedTotal.WithLabelValues(topic).Inc()
		return
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if lastErr = p.conn.Publish(topic, payload); lastErr == nil {
			publishedTotal.WithLabelValues(topic).Inc()
			return
		}
		if attempt < p.maxAttempts {
			time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
		}
	}

	// Best-effort only: the triggering mutation is already committed.
	p.logger.Warn("dropping event after failed publish attempts",
		"topic", topic,
		"event_type", event.Type,
		"attempts", p.maxAttempts,
		"error", lastErr)
	droppedTotal.WithLabelValues(topic).Inc()
}
