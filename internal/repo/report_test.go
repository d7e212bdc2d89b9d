package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/testentry"
	"barricade.gg/backend/internal/repo"
)

func TestGetReportByIDLoadsRelations(t *testing.T) {
	ctx := context.Background()
	db := testentry.DB(t)
	c := testentry.Community(t, db, 1)
	created := testentry.Report(t, db, testentry.Token(t, db, c, "t1", time.Now(), time.Hour), steamA, steamB)
	r := repo.NewReport(db)

	got, err := r.GetReportByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Token)
	require.NotNil(t, got.Token.Community)
	assert.Equal(t, c.ID, got.Token.Community.ID)
	assert.Len(t, got.Players, 2)

	_, err = r.GetReportByID(ctx, 404)
	assert.ErrorIs(t, err, bcerr.ErrNotFound)
}

func TestDeletePlayerReportsRemovesResponses(t *testing.T) {
	ctx := context.Background()
	db := testentry.DB(t)
	reporter := testentry.Community(t, db, 1)
	responder := testentry.Community(t, db, 2)
	report := testentry.Report(t, db, testentry.Token(t, db, reporter, "t1", time.Now(), time.Hour), steamA, steamB)
	responses := repo.NewPlayerReportResponse(db)
	prs := repo.NewPlayerReport(db)

	require.NoError(t, responses.UpsertResponse(ctx, db, &model.PlayerReportResponse{
		PlayerReportID: report.Players[0].ID,
		CommunityID:    responder.ID,
		Banned:         true,
		ResponderID:    2,
		ResponderName:  "alice",
		RespondedAt:    time.Now(),
	}))

	require.NoError(t, prs.DeletePlayerReports(ctx, db, []int64{report.Players[0].ID}))

	left, err := responses.GetResponsesByPlayerReportIDs(ctx, []int64{report.Players[0].ID})
	require.NoError(t, err)
	assert.Empty(t, left)

	reported, err := prs.IsPlayerReported(ctx, steamA)
	require.NoError(t, err)
	assert.False(t, reported)

	reported, err = prs.IsPlayerReported(ctx, steamB)
	require.NoError(t, err)
	assert.True(t, reported)
}
