package repo

import (
	"context"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo/selector"
)

type Report struct {
	db *bun.DB
}

func NewReport(db *bun.DB) *Report {
	return &Report{db: db}
}

func (r *Report) CreateReport(ctx context.Context, tx bun.IDB, report *model.Report) error {
	_, err := tx.NewInsert().
		Model(report).
		Exec(ctx)
	return err
}

func (r *Report) UpdateReport(ctx context.Context, tx bun.IDB, report *model.Report) error {
	_, err := tx.NewUpdate().
		Model(report).
		Column("body", "reasons_bitflag", "reasons_custom", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

// ReportExists reports whether a report was already submitted with the token id.
func (r *Report) ReportExists(ctx context.Context, tx bun.IDB, id int64) (bool, error) {
	return tx.NewSelect().
		Model((*model.Report)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

// GetReportByID returns the report with its token, reporting community and players.
func (r *Report) GetReportByID(ctx context.Context, id int64) (*model.Report, error) {
	return r.GetReportByIDWith(ctx, r.db, id)
}

func (r *Report) GetReportByIDWith(ctx context.Context, db bun.IDB, id int64) (*model.Report, error) {
	return selector.SelectOneWith[model.Report](ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Relation("Token").
			Relation("Token.Community").
			Relation("Players", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Order("pr.id ASC")
			}).
			Where("r.id = ?", id)
	})
}

func (r *Report) DeleteReport(ctx context.Context, tx bun.IDB, id int64) error {
	_, err := tx.NewDelete().
		Model((*model.Report)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
