package meta

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/pkg/bininfo"
	"barricade.gg/backend/internal/server/svr"
	"barricade.gg/backend/internal/service"
)

type Meta struct {
	fx.In

	HealthService *service.Health
	Manager       *integration.Manager
}

type integrationStatus struct {
	ID          int64  `json:"id"`
	CommunityID int64  `json:"communityId"`
	Type        string `json:"type"`
	Enabled     bool   `json:"enabled"`
	Healthy     bool   `json:"healthy"`
}

func RegisterMeta(meta *svr.Meta, c Meta) {
	meta.Get("/bininfo", c.BinInfo)

	meta.Get("/health", cache.New(cache.Config{
		// cache it for a second to mitigate potential DDoS
		Expiration: time.Second,
	}), c.Health)

	meta.Get("/integrations", c.Integrations)
}

func (c *Meta) BinInfo(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"version": bininfo.Version,
		"build":   bininfo.BuildTime,
	})
}

func (c *Meta) Health(ctx *fiber.Ctx) error {
	if err := c.HealthService.Ping(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"status": "ok",
	})
}

// Integrations lists the loaded integrations with their health.
func (c *Meta) Integrations(ctx *fiber.Ctx) error {
	return ctx.JSON(lo.Map(c.Manager.Integrations(), func(i integration.Integration, _ int) *integrationStatus {
		cfg := i.Config()
		return &integrationStatus{
			ID:          cfg.ID,
			CommunityID: cfg.CommunityID,
			Type:        string(cfg.IntegrationType),
			Enabled:     cfg.Enabled,
			Healthy:     c.Manager.Healthy(integration.KeyOf(i)),
		}
	}))
}
