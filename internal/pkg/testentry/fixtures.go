package testentry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
)

// Community inserts a PC community owned by a new admin with the given id.
func Community(t testing.TB, db *bun.DB, ownerID int64) *model.Community {
	t.Helper()
	ctx := context.Background()

	c := &model.Community{
		Name:       fmt.Sprintf("Community %d", ownerID),
		Tag:        fmt.Sprintf("C%d", ownerID),
		ContactURL: fmt.Sprintf("https://discord.gg/c%d", ownerID),
		OwnerID:    ownerID,
		IsPC:       true,
		CreatedAt:  time.Now(),
	}
	_, err := db.NewInsert().Model(c).Returning("*").Exec(ctx)
	require.NoError(t, err)

	a := &model.Admin{ID: ownerID, Name: fmt.Sprintf("owner-%d", ownerID), CommunityID: c.ID, CreatedAt: time.Now()}
	_, err = db.NewInsert().Model(a).Exec(ctx)
	require.NoError(t, err)

	return c
}

// Token inserts an unconsumed PC report token.
func Token(t testing.TB, db *bun.DB, c *model.Community, value string, issuedAt time.Time, ttl time.Duration) *model.ReportToken {
	t.Helper()

	tok := &model.ReportToken{
		Value:       value,
		AdminID:     c.OwnerID,
		CommunityID: c.ID,
		Platform:    constant.PlatformPC,
		CreatedAt:   issuedAt,
		ExpiresAt:   issuedAt.Add(ttl),
	}
	_, err := db.NewInsert().Model(tok).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return tok
}

// Report inserts a report for tok with one player report per player id.
func Report(t testing.TB, db *bun.DB, tok *model.ReportToken, playerIDs ...string) *model.Report {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	r := &model.Report{
		ID:             tok.ID,
		Body:           "caught on stream",
		ReasonsBitflag: constant.ReasonHacking,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := db.NewInsert().Model(r).Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewUpdate().Model((*model.ReportToken)(nil)).Set("consumed_at = ?", now).Where("id = ?", tok.ID).Exec(ctx)
	require.NoError(t, err)

	for _, id := range playerIDs {
		pr := &model.PlayerReport{ReportID: r.ID, PlayerID: id, PlayerName: "player " + id}
		_, err := db.NewInsert().Model(pr).Returning("*").Exec(ctx)
		require.NoError(t, err)
		r.Players = append(r.Players, pr)
	}
	return r
}
