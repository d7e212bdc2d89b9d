package repo

import (
	"context"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo/selector"
)

type Community struct {
	db  *bun.DB
	sel selector.S[model.Community]
}

func NewCommunity(db *bun.DB) *Community {
	return &Community{db: db, sel: selector.New[model.Community](db)}
}

func (r *Community) CreateCommunity(ctx context.Context, tx bun.IDB, community *model.Community) error {
	_, err := tx.NewInsert().
		Model(community).
		Returning("*").
		Exec(ctx)
	return err
}

func (r *Community) UpdateOwner(ctx context.Context, tx bun.IDB, communityID, ownerID int64) error {
	_, err := tx.NewUpdate().
		Model((*model.Community)(nil)).
		Set("owner_id = ?", ownerID).
		Where("id = ?", communityID).
		Exec(ctx)
	return err
}

func (r *Community) GetCommunityByID(ctx context.Context, id int64) (*model.Community, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Admins").Where("c.id = ?", id)
	})
}
