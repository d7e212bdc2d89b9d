package httpserver

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/pkg/bininfo"
	"barricade.gg/backend/internal/pkg/middlewares"
	"barricade.gg/backend/internal/pkg/observability"
)

var registerPromOnce sync.Once

// Create builds the devops server. It serves no business routes.
func Create(conf *appconfig.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Barricade Backend",
		ServerHeader: fmt.Sprintf("Barricade/%s", bininfo.Version),
		ReadTimeout:  time.Second * 20,
		WriteTimeout: time.Second * 20,
		// allow possibility for graceful shutdown, otherwise app#Shutdown() will block forever
		IdleTimeout:           conf.HTTPServerShutdownTimeout,
		ErrorHandler:          ErrorHandler,
		Immutable:             true,
		DisableStartupMessage: !conf.DevMode,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			log.Error().Msgf("panic: %v\n%s\n", e, buf)
		},
	}))

	middlewares.Logger(app)

	registerPromOnce.Do(func() {
		fiberprom := fiberprometheus.New(observability.ServiceName)
		fiberprom.RegisterAt(app, "/metrics")
		app.Use(fiberprom.Middleware)
	})

	if conf.DevMode {
		app.Use(pprof.New())
	}

	return app
}
