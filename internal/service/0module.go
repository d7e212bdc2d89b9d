package service

import (
	"go.uber.org/fx"

	modelcache "barricade.gg/backend/internal/model/cache"
	"barricade.gg/backend/internal/util/escalation"
)

func Module() fx.Option {
	return fx.Module("service", fx.Provide(
		escalation.NewFromConfig,
		modelcache.New,
		NewBan,
		NewSync,
		NewToken,
		NewHealth,
		NewReport,
		NewResponse,
		NewCommunity,
		NewEscalation,
		NewIntegration,
		NewWatchlist,
	))
}
