package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/util/rekuest"
)

type Watchlist struct {
	DB            *bun.DB
	WatchlistRepo *repo.PlayerWatchlist
	PlayerRepo    *repo.Player
	CommunityRepo *repo.Community
}

func NewWatchlist(db *bun.DB, watchlistRepo *repo.PlayerWatchlist, playerRepo *repo.Player, communityRepo *repo.Community) *Watchlist {
	return &Watchlist{
		DB:            db,
		WatchlistRepo: watchlistRepo,
		PlayerRepo:    playerRepo,
		CommunityRepo: communityRepo,
	}
}

// Create adds the player to the watchlist of the community.
func (s *Watchlist) Create(ctx context.Context, req *types.WatchlistRequest) (*model.PlayerWatchlist, error) {
	if err := rekuest.ValidStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.CommunityRepo.GetCommunityByID(ctx, req.CommunityID); errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("community %d not found", req.CommunityID)
	} else if err != nil {
		return nil, err
	}

	now := time.Now()
	w := &model.PlayerWatchlist{
		PlayerID:    req.PlayerID,
		CommunityID: req.CommunityID,
		CreatedAt:   now,
	}
	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := s.PlayerRepo.CreatePlayer(ctx, tx, &model.Player{ID: req.PlayerID, Name: req.PlayerName, CreatedAt: now})
		if err != nil {
			return err
		}
		return s.WatchlistRepo.CreateWatchlist(ctx, tx, w)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("evt.name", "watchlist.created").
		Int64("community.id", req.CommunityID).
		Str("player.id", req.PlayerID).
		Msg("player added to watchlist")
	return w, nil
}

func (s *Watchlist) Delete(ctx context.Context, communityID int64, playerID string) error {
	removed, err := s.WatchlistRepo.DeleteWatchlist(ctx, playerID, communityID)
	if err != nil {
		return err
	}
	if !removed {
		return bcerr.ErrNotFound.Msg("player %s is not watchlisted by community %d", playerID, communityID)
	}

	log.Info().
		Str("evt.name", "watchlist.deleted").
		Int64("community.id", communityID).
		Str("player.id", playerID).
		Msg("player removed from watchlist")
	return nil
}

func (s *Watchlist) List(ctx context.Context, communityID int64) ([]*model.PlayerWatchlist, error) {
	return s.WatchlistRepo.GetWatchlistsByCommunity(ctx, communityID)
}

func (s *Watchlist) IsPlayerWatchlisted(ctx context.Context, communityID int64, playerID string) (bool, error) {
	return s.WatchlistRepo.IsPlayerWatchlisted(ctx, playerID, communityID)
}

// FilterWatchlistedPlayerIDs returns the subset of playerIDs the community
// watches.
func (s *Watchlist) FilterWatchlistedPlayerIDs(ctx context.Context, communityID int64, playerIDs []string) ([]string, error) {
	ws, err := s.WatchlistRepo.GetWatchlistsByPlayerIDs(ctx, lo.Uniq(playerIDs), communityID)
	if err != nil {
		return nil, err
	}
	return lo.Uniq(lo.Map(ws, func(w *model.PlayerWatchlist, _ int) string { return w.PlayerID })), nil
}

// Watchers maps each watched player among playerIDs to the communities
// watching them.
func (s *Watchlist) Watchers(ctx context.Context, playerIDs []string) (map[string][]int64, error) {
	ws, err := s.WatchlistRepo.GetWatchlistsByPlayerIDs(ctx, lo.Uniq(playerIDs), 0)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]int64, len(ws))
	for _, w := range ws {
		out[w.PlayerID] = append(out[w.PlayerID], w.CommunityID)
	}
	return out, nil
}
