package types

import "barricade.gg/backend/internal/constant"

type PlayerSubmission struct {
	PlayerID   string `json:"playerId" validate:"required,playerid"`
	PlayerName string `json:"playerName" validate:"required,max=64"`
}

// ReportSubmission is a report as submitted with a report token. The platform
// of the players is taken from the token.
type ReportSubmission struct {
	Token          string                    `json:"token" validate:"required,max=64"`
	Body           string                    `json:"body" validate:"required,max=4000"`
	ReasonsBitflag constant.ReportReasonFlag `json:"reasonsBitflag" validate:"required,reasons"`
	ReasonsCustom  string                    `json:"reasonsCustom" validate:"max=255"`
	Players        []PlayerSubmission        `json:"players" validate:"required,min=1,max=10,dive"`
}

type ResponseSubmission struct {
	PlayerReportID int64                 `json:"playerReportId" validate:"required"`
	CommunityID    int64                 `json:"communityId" validate:"required"`
	Banned         bool                  `json:"banned"`
	RejectReason   constant.RejectReason `json:"rejectReason" validate:"omitempty,rejectreason"`
	ResponderID    int64                 `json:"responderId" validate:"required"`
	ResponderName  string                `json:"responderName" validate:"required,max=64"`
}

type TokenRequest struct {
	AdminID     int64             `json:"adminId" validate:"required"`
	CommunityID int64             `json:"communityId" validate:"required"`
	Platform    constant.Platform `json:"platform" validate:"required,oneof=pc console"`
}

type CommunityCreateRequest struct {
	Name       string `json:"name" validate:"required,max=32"`
	Tag        string `json:"tag" validate:"required,max=8"`
	ContactURL string `json:"contactUrl" validate:"required,url"`
	OwnerID    int64  `json:"ownerId" validate:"required"`
	OwnerName  string `json:"ownerName" validate:"required,max=64"`
	IsPC       bool   `json:"isPc"`
	IsConsole  bool   `json:"isConsole" validate:"required_without=IsPC"`
}

type WatchlistRequest struct {
	CommunityID int64  `json:"communityId" validate:"required"`
	PlayerID    string `json:"playerId" validate:"required,playerid"`
	PlayerName  string `json:"playerName" validate:"required,max=64"`
}
