package integration

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"barricade.gg/backend/internal/model"
)

// IntegrationSource lists the persisted integration configurations.
type IntegrationSource interface {
	GetAllIntegrations(ctx context.Context) ([]*model.Integration, error)
}

// Load builds every persisted integration and registers it with the manager.
// A row that cannot be built is logged and left out. It returns the number of
// integrations registered.
func Load(ctx context.Context, src IntegrationSource, factory *Factory, m *Manager) (int, error) {
	rows, err := src.GetAllIntegrations(ctx)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, row := range rows {
		i, err := factory.New(row)
		if err != nil {
			log.Warn().
				Err(err).
				Str("evt.name", "integration.load.failed").
				Int64("community.id", row.CommunityID).
				Int64("integration.id", row.ID).
				Str("integration.type", string(row.IntegrationType)).
				Msg("failed to build integration from stored configuration, skipping")
			continue
		}
		m.Add(i)
		loaded++
	}

	log.Info().
		Str("evt.name", "integration.load.done").
		Int("count", loaded).
		Int("rows", len(rows)).
		Msg("integrations loaded")
	return loaded, nil
}

// RegisterLifecycle loads the integrations on start and closes them on stop.
func RegisterLifecycle(lc fx.Lifecycle, src IntegrationSource, factory *Factory, m *Manager) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := Load(ctx, src, factory, m)
			return err
		},
		OnStop: func(ctx context.Context) error {
			return m.Close()
		},
	})
}
