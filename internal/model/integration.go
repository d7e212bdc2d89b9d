package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
)

// Integration is a community's connection profile for one external ban backend.
// A community holds at most one integration per type.
type Integration struct {
	bun.BaseModel `bun:"integrations,alias:i"`

	ID              int64                    `bun:",pk,autoincrement" json:"id"`
	CommunityID     int64                    `bun:",notnull,unique:community_type" json:"communityId"`
	IntegrationType constant.IntegrationType `bun:",notnull,unique:community_type" json:"integrationType"`
	Enabled         bool                     `bun:",notnull" json:"enabled"`
	APIKey          string                   `bun:"api_key,notnull" json:"-"`
	APIURL          string                   `bun:"api_url,notnull" json:"apiUrl"`
	BanlistID       null.String              `json:"banlistId"`
	OrganizationID  null.String              `json:"organizationId"`
	CreatedAt       time.Time                `bun:",notnull" json:"createdAt"`
	UpdatedAt       time.Time                `bun:",notnull" json:"updatedAt"`
}

// PlayerBan records the handle of a ban applied by an integration so that it
// can later be reversed or reconciled.
type PlayerBan struct {
	bun.BaseModel `bun:"player_bans,alias:pb"`

	ID            int64     `bun:",pk,autoincrement" json:"id"`
	PlayerID      string    `bun:",notnull,unique:player_integration" json:"playerId"`
	IntegrationID int64     `bun:",notnull,unique:player_integration" json:"integrationId"`
	RemoteID      string    `bun:",notnull" json:"remoteId"`
	CreatedAt     time.Time `bun:",notnull" json:"createdAt"`

	Integration *Integration `bun:"rel:belongs-to,join:integration_id=id" json:"integration,omitempty"`
}
