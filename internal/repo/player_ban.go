package repo

import (
	"context"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo/selector"
)

type PlayerBan struct {
	db  *bun.DB
	sel selector.S[model.PlayerBan]
}

func NewPlayerBan(db *bun.DB) *PlayerBan {
	return &PlayerBan{db: db, sel: selector.New[model.PlayerBan](db)}
}

func (r *PlayerBan) GetBan(ctx context.Context, playerID string, integrationID int64) (*model.PlayerBan, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("pb.player_id = ?", playerID).Where("pb.integration_id = ?", integrationID)
	})
}

func (r *PlayerBan) CreateBan(ctx context.Context, ban *model.PlayerBan) error {
	_, err := r.db.NewInsert().
		Model(ban).
		On("CONFLICT (player_id, integration_id) DO UPDATE").
		Set("remote_id = EXCLUDED.remote_id").
		Returning("*").
		Exec(ctx)
	return err
}

func (r *PlayerBan) DeleteBan(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*model.PlayerBan)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *PlayerBan) GetBansByIntegration(ctx context.Context, integrationID int64) ([]*model.PlayerBan, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("pb.integration_id = ?", integrationID).Order("pb.id ASC")
	})
}

func (r *PlayerBan) GetBansByPlayer(ctx context.Context, playerID string) ([]*model.PlayerBan, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Integration").Where("pb.player_id = ?", playerID).Order("pb.id ASC")
	})
}

// DeleteBansByIntegration forgets every ban applied by the integration.
func (r *PlayerBan) DeleteBansByIntegration(ctx context.Context, integrationID int64) error {
	_, err := r.db.NewDelete().
		Model((*model.PlayerBan)(nil)).
		Where("integration_id = ?", integrationID).
		Exec(ctx)
	return err
}
