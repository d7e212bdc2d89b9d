package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
)

type ReportToken struct {
	bun.BaseModel `bun:"report_tokens,alias:rt"`

	ID          int64             `bun:",pk,autoincrement" json:"id"`
	Value       string            `bun:",notnull,unique" json:"-"`
	AdminID     int64             `bun:",notnull" json:"adminId"`
	CommunityID int64             `bun:",notnull" json:"communityId"`
	Platform    constant.Platform `bun:",notnull" json:"platform"`
	CreatedAt   time.Time         `bun:",notnull" json:"createdAt"`
	ExpiresAt   time.Time         `bun:",notnull" json:"expiresAt"`
	ConsumedAt  *time.Time        `json:"consumedAt"`

	Community *Community `bun:"rel:belongs-to,join:community_id=id" json:"community,omitempty"`
}

func (t *ReportToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *ReportToken) Consumed() bool {
	return t.ConsumedAt != nil
}

// Report shares its ID with the token it was submitted with.
type Report struct {
	bun.BaseModel `bun:"reports,alias:r"`

	ID             int64                     `bun:",pk" json:"id"`
	Body           string                    `bun:",notnull" json:"body"`
	ReasonsBitflag constant.ReportReasonFlag `bun:",notnull" json:"reasonsBitflag"`
	ReasonsCustom  null.String               `json:"reasonsCustom"`
	CreatedAt      time.Time                 `bun:",notnull" json:"createdAt"`
	UpdatedAt      time.Time                 `bun:",notnull" json:"updatedAt"`

	Token   *ReportToken    `bun:"rel:belongs-to,join:id=id" json:"token,omitempty"`
	Players []*PlayerReport `bun:"rel:has-many,join:id=report_id" json:"players,omitempty"`
}

func (r *Report) ReasonNames() []string {
	return r.ReasonsBitflag.Names(r.ReasonsCustom.String)
}

type Player struct {
	bun.BaseModel `bun:"players,alias:p"`

	ID        string    `bun:",pk" json:"id"`
	Name      string    `bun:",notnull" json:"name"`
	CreatedAt time.Time `bun:",notnull" json:"createdAt"`
}

type PlayerReport struct {
	bun.BaseModel `bun:"player_reports,alias:pr"`

	ID         int64  `bun:",pk,autoincrement" json:"id"`
	ReportID   int64  `bun:",notnull" json:"reportId"`
	PlayerID   string `bun:",notnull" json:"playerId"`
	PlayerName string `bun:",notnull" json:"playerName"`

	Report *Report `bun:"rel:belongs-to,join:report_id=id" json:"report,omitempty"`
}

// PlayerReportResponse is a community's verdict on a PlayerReport. A row that
// is neither banned nor carries a reject reason is pending.
type PlayerReportResponse struct {
	bun.BaseModel `bun:"player_report_responses,alias:prr"`

	ID             int64       `bun:",pk,autoincrement" json:"id"`
	PlayerReportID int64       `bun:"pr_id,notnull,unique:pr_community" json:"playerReportId"`
	CommunityID    int64       `bun:",notnull,unique:pr_community" json:"communityId"`
	Banned         bool        `bun:",notnull" json:"banned"`
	RejectReason   null.String `json:"rejectReason"`
	ResponderID    int64       `bun:",notnull" json:"responderId"`
	ResponderName  string      `bun:",notnull" json:"responderName"`
	RespondedAt    time.Time   `bun:",notnull" json:"respondedAt"`

	PlayerReport *PlayerReport `bun:"rel:belongs-to,join:pr_id=id" json:"playerReport,omitempty"`
}

func (r *PlayerReportResponse) Rejected() bool {
	return !r.Banned && r.RejectReason.Valid
}

func (r *PlayerReportResponse) Pending() bool {
	return !r.Banned && !r.RejectReason.Valid
}
