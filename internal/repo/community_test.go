package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/testentry"
	"barricade.gg/backend/internal/repo"
)

func TestGetCommunityByIDLoadsAdmins(t *testing.T) {
	ctx := context.Background()
	db := testentry.DB(t)
	c := testentry.Community(t, db, 1)
	testentry.Community(t, db, 2)
	admins := repo.NewAdmin(db)

	require.NoError(t, admins.UpsertAdmin(ctx, db, &model.Admin{ID: 10, Name: "staff", CommunityID: c.ID, CreatedAt: time.Now()}))
	require.NoError(t, admins.UpsertAdmin(ctx, db, &model.Admin{ID: 11, Name: "free", CreatedAt: time.Now()}))

	got, err := repo.NewCommunity(db).GetCommunityByID(ctx, c.ID)
	require.NoError(t, err)
	ids := make([]int64, 0, len(got.Admins))
	for _, a := range got.Admins {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []int64{1, 10}, ids)

	free, err := admins.GetAdminByID(ctx, 11)
	require.NoError(t, err)
	assert.Zero(t, free.CommunityID)

	require.NoError(t, admins.SetCommunity(ctx, db, 10, 0))
	n, err := admins.CountAdminsOfCommunity(ctx, db, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
