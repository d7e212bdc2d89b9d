package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/pkg/bcerr"
)

func TestCommunityAdmins(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c, err := e.Community.Create(ctx, &types.CommunityCreateRequest{
		Name:       "Example Community",
		Tag:        "[EX]",
		ContactURL: "https://discord.gg/example",
		OwnerID:    1,
		OwnerName:  "owner",
		IsPC:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.OwnerID)

	_, err = e.Community.Create(ctx, &types.CommunityCreateRequest{
		Name:       "Second",
		Tag:        "[2]",
		ContactURL: "https://discord.gg/second",
		OwnerID:    1,
		OwnerName:  "owner",
		IsPC:       true,
	})
	assert.ErrorIs(t, err, bcerr.ErrConflict)

	// the owner does not count towards the limit of two
	require.NoError(t, e.Community.AddAdmin(ctx, c.ID, 2, "second"))
	require.NoError(t, e.Community.AddAdmin(ctx, c.ID, 3, "third"))
	err = e.Community.AddAdmin(ctx, c.ID, 4, "fourth")
	assert.ErrorIs(t, err, bcerr.ErrLimitReached)

	err = e.Community.RemoveAdmin(ctx, c.ID, 1)
	assert.ErrorIs(t, err, bcerr.ErrInvalidReq)

	require.NoError(t, e.Community.TransferOwnership(ctx, c.ID, 2))
	c, err = e.Community.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.OwnerID)

	require.NoError(t, e.Community.RemoveAdmin(ctx, c.ID, 1))
	require.NoError(t, e.Community.AddAdmin(ctx, c.ID, 4, "fourth"))

	err = e.Community.TransferOwnership(ctx, c.ID, 1)
	assert.ErrorIs(t, err, bcerr.ErrInvalidReq)
}

func TestCreateCommunityValidates(t *testing.T) {
	e := newEnv(t)

	_, err := e.Community.Create(context.Background(), &types.CommunityCreateRequest{
		Name:       "No platform",
		Tag:        "[NP]",
		ContactURL: "https://discord.gg/np",
		OwnerID:    1,
		OwnerName:  "owner",
	})
	assert.ErrorIs(t, err, bcerr.ErrInvalidReq)

	_, err = e.Community.Get(context.Background(), 42)
	assert.ErrorIs(t, err, bcerr.ErrNotFound)
}
