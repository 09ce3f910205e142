package bootstrap

import (
	"context"
	"log/slog"

	"shuttle-service/internal/infra/events"
	"shuttle-service/internal/pkg/config"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewPublisher,
	),
)

// NewPublisher picks the NATS publisher when a broker is configured and the
// log-only fallback otherwise.
func NewPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.Events.NATSURL == "" {
		logger.Info("no NATS URL configured, events will be logged only")
		return events.NewLogPublisher(logger), nil
	}

	publisher, cleanup, err := events.NewNATSPublisher(cfg.Events, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	return publisher, nil
}
