package repo

import (
	"context"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/model"
)

type Player struct {
	db *bun.DB
}

func NewPlayer(db *bun.DB) *Player {
	return &Player{db: db}
}

// UpsertPlayers inserts unknown players and refreshes the last known name of
// known ones.
func (r *Player) UpsertPlayers(ctx context.Context, tx bun.IDB, players []*model.Player) error {
	if len(players) == 0 {
		return nil
	}
	_, err := tx.NewInsert().
		Model(&players).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Exec(ctx)
	return err
}

// CreatePlayer inserts the player unless it is already known.
func (r *Player) CreatePlayer(ctx context.Context, tx bun.IDB, player *model.Player) error {
	_, err := tx.NewInsert().
		Model(player).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	return err
}
