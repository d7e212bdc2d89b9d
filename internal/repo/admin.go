package repo

import (
	"context"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo/selector"
)

type Admin struct {
	db  *bun.DB
	sel selector.S[model.Admin]
}

func NewAdmin(db *bun.DB) *Admin {
	return &Admin{db: db, sel: selector.New[model.Admin](db)}
}

func (r *Admin) GetAdminByID(ctx context.Context, id int64) (*model.Admin, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("a.id = ?", id)
	})
}

// UpsertAdmin creates the admin or refreshes its name and community.
func (r *Admin) UpsertAdmin(ctx context.Context, tx bun.IDB, admin *model.Admin) error {
	_, err := tx.NewInsert().
		Model(admin).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("community_id = EXCLUDED.community_id").
		Exec(ctx)
	return err
}

// SetCommunity moves the admin to the community. A zero communityID detaches it.
func (r *Admin) SetCommunity(ctx context.Context, tx bun.IDB, adminID int64, communityID int64) error {
	q := tx.NewUpdate().
		Model((*model.Admin)(nil)).
		Where("id = ?", adminID)
	if communityID == 0 {
		q = q.Set("community_id = NULL")
	} else {
		q = q.Set("community_id = ?", communityID)
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *Admin) CountAdminsOfCommunity(ctx context.Context, tx bun.IDB, communityID int64) (int, error) {
	return tx.NewSelect().
		Model((*model.Admin)(nil)).
		Where("community_id = ?", communityID).
		Count(ctx)
}
