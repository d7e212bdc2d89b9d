package httpserver_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/middlewares"
	"barricade.gg/backend/internal/server/httpserver"
)

func body(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&m))
	return m
}

func TestErrorHandler(t *testing.T) {
	app := httpserver.Create(&appconfig.Config{})
	app.Get("/missing", func(ctx *fiber.Ctx) error {
		return bcerr.ErrNotFound.Msg("report %d not found", 7)
	})
	app.Get("/broken", func(ctx *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/panics", func(ctx *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middlewares.RequestIDHeader))
	m := body(t, resp.Body)
	assert.Equal(t, bcerr.CodeNotFound, m["code"])
	assert.Equal(t, "report 7 not found", m["message"])

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/broken", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, bcerr.CodeInternalError, body(t, resp.Body)["code"])

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/panics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_ERROR", body(t, resp.Body)["code"])
}
