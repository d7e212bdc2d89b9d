package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"barricade.gg/backend/internal/pkg/flog"
)

const RequestIDHeader = "X-Barricade-Request-ID"

// Logger logs every request with a request-scoped logger.
func Logger(app *fiber.App) {
	for _, h := range []fiber.Handler{
		flog.NewHandlerMiddleware(log.With().Logger()),
		flog.RequestIDHandler("request_id", RequestIDHeader),
		flog.FieldHandler("ip", func(ctx *fiber.Ctx) string { return ctx.IP() }),
		flog.FieldHandler("method", func(ctx *fiber.Ctx) string { return ctx.Method() }),
		flog.FieldHandler("url", func(ctx *fiber.Ctx) string { return ctx.Path() }),
		requestLogger(),
	} {
		app.Use(h)
	}
}

func requestLogger() fiber.Handler {
	return flog.AccessHandler(func(ctx *fiber.Ctx, duration time.Duration) {
		flog.FromFiberCtx(ctx).Debug().
			Str("evt.name", "http.request").
			Int("status", ctx.Response().StatusCode()).
			Int("size", len(ctx.Response().Body())).
			Dur("duration", duration).
			Msg("received request")
	})
}
