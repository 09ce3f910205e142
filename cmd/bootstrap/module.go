package bootstrap

import (
	"shuttle-service/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	EventsModule,
	TasksModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
