package runscript

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "barricade.gg/backend/cmd/app/cli"
	script_migrate "barricade.gg/backend/cmd/app/cli/runscript/scripts/migrate"
	script_sync_integrations "barricade.gg/backend/cmd/app/cli/runscript/scripts/syncintegrations"
)

func depsFn[T any]() func() (T, func() error, error) {
	return func() (T, func() error, error) {
		var deps T
		stop, err := cliapp.Start(fx.Populate(&deps))
		return deps, stop, err
	}
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "run-script",
		Description: "run maintenance go scripts",
		Subcommands: []*cli.Command{
			script_migrate.Command(depsFn[script_migrate.CommandDeps]()),
			script_sync_integrations.Command(depsFn[script_sync_integrations.CommandDeps]()),
		},
	}
}
