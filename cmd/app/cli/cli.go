package cli

import (
	"context"

	"go.uber.org/fx"

	"barricade.gg/backend/internal/app"
	"barricade.gg/backend/internal/app/appcontext"
)

// Start starts the app without servers and workers, populating module.
// The returned function stops it.
func Start(module fx.Option) (stop func() error, err error) {
	a := app.New(appcontext.Declare(appcontext.EnvCLI), module)
	if err := a.Start(context.Background()); err != nil {
		return nil, err
	}
	return func() error {
		return a.Stop(context.Background())
	}, nil
}
