package bootstrap

import (
	"context"

	"shuttle-service/internal/pkg/clock"
	"shuttle-service/internal/pkg/config"
	"shuttle-service/internal/usecase/tasks"

	"go.uber.org/fx"
)

var TasksModule = fx.Module("tasks",
	fx.Provide(
		NewTaskCoordinator,
	),
)

func NewTaskCoordinator(lc fx.Lifecycle, cfg config.Config, clk clock.Clock) *tasks.Coordinator {
	coordinator := tasks.NewCoordinator(cfg.Tasks, clk)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			coordinator.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			coordinator.Stop()
			return nil
		},
	})

	return coordinator
}
