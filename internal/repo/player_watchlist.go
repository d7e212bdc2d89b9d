package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/repo/selector"
)

type PlayerWatchlist struct {
	db  *bun.DB
	sel selector.S[model.PlayerWatchlist]
}

func NewPlayerWatchlist(db *bun.DB) *PlayerWatchlist {
	return &PlayerWatchlist{db: db, sel: selector.New[model.PlayerWatchlist](db)}
}

// CreateWatchlist returns bcerr.ErrConflict when the community already
// watches the player.
func (r *PlayerWatchlist) CreateWatchlist(ctx context.Context, tx bun.IDB, w *model.PlayerWatchlist) error {
	exists, err := tx.NewSelect().
		Model((*model.PlayerWatchlist)(nil)).
		Where("player_id = ?", w.PlayerID).
		Where("community_id = ?", w.CommunityID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return bcerr.ErrConflict.Msg("player %s is already watchlisted by community %d", w.PlayerID, w.CommunityID)
	}

	_, err = tx.NewInsert().
		Model(w).
		Returning("*").
		Exec(ctx)
	return err
}

// DeleteWatchlist reports whether a watchlist entry was removed.
func (r *PlayerWatchlist) DeleteWatchlist(ctx context.Context, playerID string, communityID int64) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*model.PlayerWatchlist)(nil)).
		Where("player_id = ?", playerID).
		Where("community_id = ?", communityID).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "delete watchlist: rows affected")
	}
	return n > 0, nil
}

func (r *PlayerWatchlist) IsPlayerWatchlisted(ctx context.Context, playerID string, communityID int64) (bool, error) {
	return r.db.NewSelect().
		Model((*model.PlayerWatchlist)(nil)).
		Where("player_id = ?", playerID).
		Where("community_id = ?", communityID).
		Exists(ctx)
}

func (r *PlayerWatchlist) GetWatchlistsByCommunity(ctx context.Context, communityID int64) ([]*model.PlayerWatchlist, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Player").Where("pw.community_id = ?", communityID).Order("pw.id ASC")
	})
}

// GetWatchlistsByPlayerIDs returns the watchlist entries of the given players.
// A zero communityID matches every community.
func (r *PlayerWatchlist) GetWatchlistsByPlayerIDs(ctx context.Context, playerIDs []string, communityID int64) ([]*model.PlayerWatchlist, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("pw.player_id IN (?)", bun.In(playerIDs))
		if communityID != 0 {
			q = q.Where("pw.community_id = ?", communityID)
		}
		return q.Order("pw.id ASC")
	})
}
