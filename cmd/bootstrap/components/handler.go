package components

import (
	"shuttle-service/internal/handler"
	"shuttle-service/internal/handler/api"
	"shuttle-service/internal/handler/middleware"
	"shuttle-service/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewSubscriptionHandler,
		api.NewTripHandler,
		api.NewNotificationHandler,
		middleware.NewAuthMiddleware,
		func(cfg config.Config) config.CookieConfig {
			return cfg.Cookie
		},
	),
	fx.Invoke(handler.NewRouter),
)
