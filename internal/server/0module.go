package server

import (
	"go.uber.org/fx"

	"barricade.gg/backend/internal/server/httpserver"
	"barricade.gg/backend/internal/server/svr"
)

func Module() fx.Option {
	return fx.Module("server",
		fx.Provide(httpserver.Create),
		fx.Provide(svr.CreateEndpointGroups),
		fx.Invoke(Run),
	)
}
