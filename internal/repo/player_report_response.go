package repo

import (
	"context"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo/selector"
)

type PlayerReportResponse struct {
	db  *bun.DB
	sel selector.S[model.PlayerReportResponse]
}

func NewPlayerReportResponse(db *bun.DB) *PlayerReportResponse {
	return &PlayerReportResponse{db: db, sel: selector.New[model.PlayerReportResponse](db)}
}

// UpsertResponse stores resp, replacing any earlier response of the same
// community to the same player report.
func (r *PlayerReportResponse) UpsertResponse(ctx context.Context, db bun.IDB, resp *model.PlayerReportResponse) error {
	_, err := db.NewInsert().
		Model(resp).
		On("CONFLICT (pr_id, community_id) DO UPDATE").
		Set("banned = EXCLUDED.banned").
		Set("reject_reason = EXCLUDED.reject_reason").
		Set("responder_id = EXCLUDED.responder_id").
		Set("responder_name = EXCLUDED.responder_name").
		Set("responded_at = EXCLUDED.responded_at").
		Returning("*").
		Exec(ctx)
	return err
}

func (r *PlayerReportResponse) GetResponse(ctx context.Context, prID, communityID int64) (*model.PlayerReportResponse, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("prr.pr_id = ?", prID).Where("prr.community_id = ?", communityID)
	})
}

// GetResponsesByPlayerReportIDs loads the responses of many player reports in one query.
func (r *PlayerReportResponse) GetResponsesByPlayerReportIDs(ctx context.Context, prIDs []int64) ([]*model.PlayerReportResponse, error) {
	if len(prIDs) == 0 {
		return []*model.PlayerReportResponse{}, nil
	}
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("prr.pr_id IN (?)", bun.In(prIDs)).Order("prr.id ASC")
	})
}

// GetBanningCommunityIDs returns the communities with a ban response on any of prIDs.
func (r *PlayerReportResponse) GetBanningCommunityIDs(ctx context.Context, db bun.IDB, prIDs []int64) ([]int64, error) {
	var ids []int64
	if len(prIDs) == 0 {
		return ids, nil
	}
	err := db.NewSelect().
		Model((*model.PlayerReportResponse)(nil)).
		ColumnExpr("DISTINCT community_id").
		Where("pr_id IN (?)", bun.In(prIDs)).
		Where("banned = ?", true).
		Scan(ctx, &ids)
	return ids, err
}

// CountBannedResponses counts the ban responses communityID holds against
// playerID across all reports.
func (r *PlayerReportResponse) CountBannedResponses(ctx context.Context, playerID string, communityID int64) (int, error) {
	return r.db.NewSelect().
		Model((*model.PlayerReportResponse)(nil)).
		Join("JOIN player_reports AS pr ON pr.id = prr.pr_id").
		Where("pr.player_id = ?", playerID).
		Where("prr.community_id = ?", communityID).
		Where("prr.banned = ?", true).
		Count(ctx)
}

// ExpireBansOfPlayer resets every ban response of communityID against
// playerID to pending. It returns the number of responses reset.
func (r *PlayerReportResponse) ExpireBansOfPlayer(ctx context.Context, playerID string, communityID int64) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*model.PlayerReportResponse)(nil)).
		Set("banned = ?", false).
		Set("reject_reason = NULL").
		Where("community_id = ?", communityID).
		Where("banned = ?", true).
		Where("pr_id IN (?)", r.db.NewSelect().
			Model((*model.PlayerReport)(nil)).
			Column("id").
			Where("player_id = ?", playerID)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetPendingPlayerReports returns the player reports of other communities'
// reports that communityID has not yet banned or rejected.
func (r *PlayerReportResponse) GetPendingPlayerReports(ctx context.Context, communityID int64, limit int) ([]*model.PlayerReport, error) {
	var prs []*model.PlayerReport
	err := r.db.NewSelect().
		Model(&prs).
		Relation("Report").
		Join("JOIN report_tokens AS rt ON rt.id = pr.report_id").
		Where("rt.community_id != ?", communityID).
		Where("NOT EXISTS (?)", r.db.NewSelect().
			Model((*model.PlayerReportResponse)(nil)).
			ColumnExpr("1").
			Where("prr.pr_id = pr.id").
			Where("prr.community_id = ?", communityID).
			WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("prr.banned = ?", true).WhereOr("prr.reject_reason IS NOT NULL")
			})).
		Order("pr.id ASC").
		Limit(limit).
		Scan(ctx)
	return prs, err
}
