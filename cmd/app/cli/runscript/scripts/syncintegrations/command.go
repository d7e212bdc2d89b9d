package script_sync_integrations

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"barricade.gg/backend/internal/service"
)

type CommandDeps struct {
	fx.In

	SyncService *service.Sync
}

func Command(depsFn func() (CommandDeps, func() error, error)) *cli.Command {
	return &cli.Command{
		Name:        "sync-integrations",
		Description: "reconcile ban records with the bans held by every integration once",
		Action: func(ctx *cli.Context) error {
			deps, stop, err := depsFn()
			if err != nil {
				return err
			}
			defer stop()
			return run(ctx, deps)
		},
	}
}
