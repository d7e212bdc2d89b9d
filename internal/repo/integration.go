package repo

import (
	"context"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo/selector"
)

type Integration struct {
	db  *bun.DB
	sel selector.S[model.Integration]
}

func NewIntegration(db *bun.DB) *Integration {
	return &Integration{db: db, sel: selector.New[model.Integration](db)}
}

// SaveIntegration inserts the row, or updates the existing row of the same
// community and type.
func (r *Integration) SaveIntegration(ctx context.Context, integration *model.Integration) error {
	_, err := r.db.NewInsert().
		Model(integration).
		On("CONFLICT (community_id, integration_type) DO UPDATE").
		Set("enabled = EXCLUDED.enabled").
		Set("api_key = EXCLUDED.api_key").
		Set("api_url = EXCLUDED.api_url").
		Set("banlist_id = EXCLUDED.banlist_id").
		Set("organization_id = EXCLUDED.organization_id").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	return err
}

func (r *Integration) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := r.db.NewUpdate().
		Model((*model.Integration)(nil)).
		Set("enabled = ?", enabled).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *Integration) DeleteIntegration(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*model.Integration)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *Integration) GetIntegrationByID(ctx context.Context, id int64) (*model.Integration, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("i.id = ?", id)
	})
}

func (r *Integration) GetIntegrationsByCommunity(ctx context.Context, communityID int64) ([]*model.Integration, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("i.community_id = ?", communityID).Order("i.id ASC")
	})
}

func (r *Integration) GetAllIntegrations(ctx context.Context) ([]*model.Integration, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("i.id ASC")
	})
}
