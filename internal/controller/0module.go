package controller

import (
	"go.uber.org/fx"

	controllermeta "barricade.gg/backend/internal/controller/meta"
)

func Module() fx.Option {
	return fx.Module("controller",
		// Controllers (meta)
		controllermeta.Module(),
	)
}
