package integration

import (
	"go.uber.org/fx"

	"barricade.gg/backend/internal/repo"
)

func Module() fx.Option {
	return fx.Module("integration",
		fx.Provide(
			NewFactory,
			NewManager,
			func(r *repo.PlayerBan) BanLedger { return r },
			func(r *repo.Integration) IntegrationSource { return r },
		),
		fx.Invoke(RegisterLifecycle),
	)
}
