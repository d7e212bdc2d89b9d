package model

import (
	"time"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/constant"
)

type Community struct {
	bun.BaseModel `bun:"communities,alias:c"`

	ID         int64     `bun:",pk,autoincrement" json:"id"`
	Name       string    `bun:",notnull" json:"name"`
	Tag        string    `bun:",notnull" json:"tag"`
	ContactURL string    `bun:",notnull" json:"contactUrl"`
	OwnerID    int64     `bun:",notnull" json:"ownerId"`
	IsPC       bool      `bun:",notnull" json:"isPc"`
	IsConsole  bool      `bun:",notnull" json:"isConsole"`
	CreatedAt  time.Time `bun:",notnull,default:current_timestamp" json:"createdAt"`

	Owner  *Admin   `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
	Admins []*Admin `bun:"rel:has-many,join:id=community_id" json:"admins,omitempty"`
}

// Plays reports whether the community is enrolled for the given platform.
func (c *Community) Plays(p constant.Platform) bool {
	switch p {
	case constant.PlatformPC:
		return c.IsPC
	case constant.PlatformConsole:
		return c.IsConsole
	}
	return false
}

// Admin is a community staff member. ID is the external (chat platform) user id.
type Admin struct {
	bun.BaseModel `bun:"admins,alias:a"`

	ID          int64     `bun:",pk" json:"id"`
	Name        string    `bun:",notnull" json:"name"`
	CommunityID int64     `bun:",nullzero" json:"communityId"`
	CreatedAt   time.Time `bun:",notnull,default:current_timestamp" json:"createdAt"`
}
