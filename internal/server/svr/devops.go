package svr

import (
	"github.com/gofiber/fiber/v2"
)

// Meta is the router of the devops endpoints.
type Meta struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App) *Meta {
	return &Meta{Router: app.Group("/")}
}
