package app

import (
	"time"

	"go.uber.org/fx"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/app/appcontext"
	"barricade.gg/backend/internal/controller"
	"barricade.gg/backend/internal/infra"
	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/pkg/logger"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/server"
	"barricade.gg/backend/internal/service"
	"barricade.gg/backend/internal/workers/syncwkr"
)

func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration are the only two things that are not in the fx graph
	// because some other packages need them to be initialized before fx starts
	logger.Configure(conf)

	baseOpts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Infrastructures
		infra.Module(),

		// Repositories
		repo.Module(),

		// Integrations: loaded from the store on start, closed on stop
		integration.Module(),

		// Services
		service.Module(),

		// Global Singleton Inits
		fx.Invoke(infra.SentryInit),

		// fx Extra Options
		fx.StartTimeout(30 * time.Second),
		// StopTimeout is not typically needed, since we're using fiber's Shutdown(),
		// in which fiber has its own IdleTimeout for controlling the shutdown timeout.
		// It acts as a countermeasure in case the fiber app is not properly shutting down.
		fx.StopTimeout(5 * time.Minute),
	}

	if ctx.Env == appcontext.EnvServer {
		baseOpts = append(baseOpts,
			// Servers
			server.Module(),

			// Controllers
			controller.Module(),

			// Workers
			fx.Provide(func(s *service.Sync) syncwkr.Syncer { return s }),
			fx.Invoke(syncwkr.Start),
		)
	}

	return append(baseOpts, additionalOpts...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
