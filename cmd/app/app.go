package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"barricade.gg/backend/cmd/app/cli/runscript"
	"barricade.gg/backend/cmd/app/server"
	"barricade.gg/backend/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "barricade",
		Description: "Barricade backend: shared player reports and ban coordination across communities. Built with Go, bun and go.uber.org/fx. Uses NATS JetStream for domain events and Redis for caching and locking.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			runscript.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
