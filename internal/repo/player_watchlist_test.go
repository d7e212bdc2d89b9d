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

func TestWatchlistUniquePerCommunity(t *testing.T) {
	ctx := context.Background()
	db := testentry.DB(t)
	c1 := testentry.Community(t, db, 1)
	c2 := testentry.Community(t, db, 2)
	r := repo.NewPlayerWatchlist(db)

	w := &model.PlayerWatchlist{PlayerID: steamA, CommunityID: c1.ID, CreatedAt: time.Now()}
	require.NoError(t, r.CreateWatchlist(ctx, db, w))
	assert.NotZero(t, w.ID)

	err := r.CreateWatchlist(ctx, db, &model.PlayerWatchlist{PlayerID: steamA, CommunityID: c1.ID, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, bcerr.ErrConflict)
	require.NoError(t, r.CreateWatchlist(ctx, db, &model.PlayerWatchlist{PlayerID: steamA, CommunityID: c2.ID, CreatedAt: time.Now()}))
	require.NoError(t, r.CreateWatchlist(ctx, db, &model.PlayerWatchlist{PlayerID: steamB, CommunityID: c2.ID, CreatedAt: time.Now()}))

	all, err := r.GetWatchlistsByPlayerIDs(ctx, []string{steamA, steamB}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := r.GetWatchlistsByPlayerIDs(ctx, []string{steamA, steamB}, c1.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, steamA, scoped[0].PlayerID)

	removed, err := r.DeleteWatchlist(ctx, steamA, c1.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	watched, err := r.IsPlayerWatchlisted(ctx, steamA, c1.ID)
	require.NoError(t, err)
	assert.False(t, watched)
	watched, err = r.IsPlayerWatchlisted(ctx, steamA, c2.ID)
	require.NoError(t, err)
	assert.True(t, watched)
}
