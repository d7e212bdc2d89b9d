package server

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"barricade.gg/backend/internal/app/appconfig"
)

// Run serves the devops server for the lifetime of the app. An empty
// DevOpsAddress disables it.
func Run(app *fiber.App, conf *appconfig.Config, lc fx.Lifecycle) {
	if conf.DevOpsAddress == "" {
		log.Info().
			Str("evt.name", "server.devops.disabled").
			Msg("devops server is disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", conf.DevOpsAddress)
			if err != nil {
				return err
			}

			log.Info().
				Str("evt.name", "server.devops.listening").
				Str("address", ln.Addr().String()).
				Msg("devops server listening")

			go func() {
				if err := app.Listener(ln); err != nil {
					log.Error().Err(err).Msg("server terminated unexpectedly")
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}
