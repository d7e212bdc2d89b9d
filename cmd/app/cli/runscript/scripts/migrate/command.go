package script_migrate

import (
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

type CommandDeps struct {
	fx.In

	DB *bun.DB
}

func Command(depsFn func() (CommandDeps, func() error, error)) *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Description: "create the database schema",
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
