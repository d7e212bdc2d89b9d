package types

import (
	"time"

	"barricade.gg/backend/internal/constant"
)

// Event is the envelope of a domain event published to the event stream.
type Event struct {
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type ReportEvent struct {
	ReportID    int64    `json:"reportId"`
	CommunityID int64    `json:"communityId"`
	PlayerIDs   []string `json:"playerIds"`
	// Watchers maps reported players to the communities watching them.
	Watchers map[string][]int64 `json:"watchers,omitempty"`
}

type ResponseEvent struct {
	ReportID       int64  `json:"reportId"`
	PlayerReportID int64  `json:"playerReportId"`
	PlayerID       string `json:"playerId"`
	CommunityID    int64  `json:"communityId"`
	Banned         bool   `json:"banned"`
}

type EscalationEvent struct {
	ReportID  int64 `json:"reportId"`
	Qualifies bool  `json:"qualifies"`
	// Met lists the criteria the report met.
	Met []string `json:"met"`
}

type IntegrationEvent struct {
	IntegrationID   int64                    `json:"integrationId"`
	CommunityID     int64                    `json:"communityId"`
	IntegrationType constant.IntegrationType `json:"integrationType"`
	Enabled         bool                     `json:"enabled"`
}
