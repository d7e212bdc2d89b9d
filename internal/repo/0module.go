package repo

import (
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("repo", fx.Provide(
		NewAdmin,
		NewReport,
		NewPlayer,
		NewCommunity,
		NewPlayerBan,
		NewReportToken,
		NewIntegration,
		NewPlayerReport,
		NewPlayerReportResponse,
		NewPlayerWatchlist,
	))
}
