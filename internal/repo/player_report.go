package repo

import (
	"context"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo/selector"
)

type PlayerReport struct {
	db  *bun.DB
	sel selector.S[model.PlayerReport]
}

func NewPlayerReport(db *bun.DB) *PlayerReport {
	return &PlayerReport{db: db, sel: selector.New[model.PlayerReport](db)}
}

func (r *PlayerReport) CreatePlayerReports(ctx context.Context, tx bun.IDB, prs []*model.PlayerReport) error {
	if len(prs) == 0 {
		return nil
	}
	_, err := tx.NewInsert().
		Model(&prs).
		Returning("*").
		Exec(ctx)
	return err
}

func (r *PlayerReport) UpdatePlayerNames(ctx context.Context, tx bun.IDB, prs []*model.PlayerReport) error {
	for _, pr := range prs {
		_, err := tx.NewUpdate().
			Model(pr).
			Column("player_name").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeletePlayerReports removes player reports together with their responses.
func (r *PlayerReport) DeletePlayerReports(ctx context.Context, tx bun.IDB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.NewDelete().
		Model((*model.PlayerReportResponse)(nil)).
		Where("pr_id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return err
	}
	_, err = tx.NewDelete().
		Model((*model.PlayerReport)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

// GetPlayerReportByID returns the player report with its report, token and
// reporting community.
func (r *PlayerReport) GetPlayerReportByID(ctx context.Context, id int64) (*model.PlayerReport, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Relation("Report").
			Relation("Report.Token").
			Relation("Report.Token.Community").
			Where("pr.id = ?", id)
	})
}

func (r *PlayerReport) GetPlayerReportsByPlayerID(ctx context.Context, playerID string) ([]*model.PlayerReport, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("pr.player_id = ?", playerID).Order("pr.id ASC")
	})
}

func (r *PlayerReport) IsPlayerReported(ctx context.Context, playerID string) (bool, error) {
	return r.db.NewSelect().
		Model((*model.PlayerReport)(nil)).
		Where("player_id = ?", playerID).
		Exists(ctx)
}
