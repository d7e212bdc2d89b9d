package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
)

// Models lists every persisted model in creation order.
var Models = []any{
	(*model.Admin)(nil),
	(*model.Community)(nil),
	(*model.ReportToken)(nil),
	(*model.Report)(nil),
	(*model.Player)(nil),
	(*model.PlayerReport)(nil),
	(*model.PlayerReportResponse)(nil),
	(*model.Integration)(nil),
	(*model.PlayerBan)(nil),
	(*model.PlayerWatchlist)(nil),
}

// CreateSchema creates the tables that do not exist yet.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, m := range Models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, "create table for %T", m)
		}
	}

	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{(*model.PlayerReport)(nil), "player_reports_player_id_idx", []string{"player_id"}},
		{(*model.PlayerReport)(nil), "player_reports_report_id_idx", []string{"report_id"}},
		{(*model.PlayerReportResponse)(nil), "player_report_responses_community_id_idx", []string{"community_id"}},
		{(*model.PlayerBan)(nil), "player_bans_integration_id_idx", []string{"integration_id"}},
		{(*model.PlayerWatchlist)(nil), "player_watchlists_community_id_idx", []string{"community_id"}},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return errors.Wrapf(err, "create index %s", idx.name)
		}
	}

	return nil
}
