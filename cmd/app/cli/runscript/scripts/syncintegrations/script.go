package script_sync_integrations

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func run(ctx *cli.Context, deps CommandDeps) error {
	log.Info().Msg("running script")

	errs := deps.SyncService.SynchronizeAll(ctx.Context)
	if len(errs) > 0 {
		return errors.Errorf("%d integrations failed to synchronize", len(errs))
	}

	log.Info().Msg("script finished")

	return nil
}
