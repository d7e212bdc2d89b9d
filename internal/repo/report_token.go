package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/repo/selector"
)

type ReportToken struct {
	db  *bun.DB
	sel selector.S[model.ReportToken]
}

func NewReportToken(db *bun.DB) *ReportToken {
	return &ReportToken{db: db, sel: selector.New[model.ReportToken](db)}
}

func (r *ReportToken) CreateToken(ctx context.Context, db bun.IDB, token *model.ReportToken) error {
	_, err := db.NewInsert().
		Model(token).
		Returning("*").
		Exec(ctx)
	return err
}

func (r *ReportToken) GetTokenByID(ctx context.Context, id int64) (*model.ReportToken, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("rt.id = ?", id)
	})
}

// GetTokenByValue looks the token up within db so that the lookup joins the
// caller's transaction.
func (r *ReportToken) GetTokenByValue(ctx context.Context, db bun.IDB, value string) (*model.ReportToken, error) {
	return selector.SelectOneWith[model.ReportToken](ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Community").Where("rt.value = ?", value)
	})
}

// ConsumeToken marks the token consumed if, and only if, it has not been
// consumed yet. Of any number of concurrent callers exactly one succeeds; the
// others get bcerr.ErrTokenAlreadyUsed.
func (r *ReportToken) ConsumeToken(ctx context.Context, db bun.IDB, id int64, at time.Time) error {
	res, err := db.NewUpdate().
		Model((*model.ReportToken)(nil)).
		Set("consumed_at = ?", at).
		Where("id = ?", id).
		Where("consumed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "consume token: rows affected")
	}
	if n == 0 {
		return bcerr.ErrTokenAlreadyUsed
	}
	return nil
}

// ReissueToken replaces the value of a token, extends its expiry and makes it
// usable for one more submission.
func (r *ReportToken) ReissueToken(ctx context.Context, db bun.IDB, id int64, value string, expiresAt time.Time) error {
	res, err := db.NewUpdate().
		Model((*model.ReportToken)(nil)).
		Set("value = ?", value).
		Set("expires_at = ?", expiresAt).
		Set("consumed_at = NULL").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reissue token: rows affected")
	}
	if n == 0 {
		return bcerr.ErrTokenNotFound
	}
	return nil
}
