package server

import (
	"barricade.gg/backend/internal/app"
	"barricade.gg/backend/internal/app/appcontext"
)

func Run() {
	app.New(appcontext.Declare(appcontext.EnvServer)).Run()
}
