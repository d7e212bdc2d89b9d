package model

import (
	"time"

	"github.com/uptrace/bun"
)

// PlayerWatchlist marks a player a community wants to hear about when they
// get reported.
type PlayerWatchlist struct {
	bun.BaseModel `bun:"player_watchlists,alias:pw"`

	ID          int64     `bun:",pk,autoincrement" json:"id"`
	PlayerID    string    `bun:",notnull,unique:player_community" json:"playerId"`
	CommunityID int64     `bun:",notnull,unique:player_community" json:"communityId"`
	CreatedAt   time.Time `bun:",notnull" json:"createdAt"`

	Player *Player `bun:"rel:belongs-to,join:player_id=id" json:"player,omitempty"`
}
