package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/testentry"
)

func TestSynchronize(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reporter := testentry.Community(t, e.db, 100)
	responder := testentry.Community(t, e.db, 200)
	fake := e.addFake(t, responder.ID, constant.IntegrationTypeCRCON)

	report := reportWith(t, e, reporter, steamID(1), steamID(2), steamID(3))
	for _, pr := range report.Players {
		ban(t, e, pr, responder)
	}

	gone, _ := e.playerBans.GetBan(ctx, steamID(1), fake.cfg.ID)
	lifted, _ := e.playerBans.GetBan(ctx, steamID(2), fake.cfg.ID)
	fake.mu.Lock()
	delete(fake.remote, gone.RemoteID)
	fake.remote[lifted.RemoteID].Active = false
	fake.remote["unknown"] = &integration.RemoteBan{RemoteID: "unknown", PlayerID: steamID(9), Active: true}
	fake.mu.Unlock()

	errs := e.Sync.SynchronizeAll(ctx)
	assert.Empty(t, errs)

	_, err := e.playerBans.GetBan(ctx, steamID(1), fake.cfg.ID)
	assert.ErrorIs(t, err, bcerr.ErrNotFound)
	_, err = e.playerBans.GetBan(ctx, steamID(2), fake.cfg.ID)
	assert.ErrorIs(t, err, bcerr.ErrNotFound)
	_, err = e.playerBans.GetBan(ctx, steamID(3), fake.cfg.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"unknown"}, fake.expired)

	// the lifted ban resets the community's ban response
	n, err := e.responses.CountBannedResponses(ctx, steamID(2), responder.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = e.responses.CountBannedResponses(ctx, steamID(1), responder.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	i, ok := e.manager.Get(responder.ID, constant.IntegrationTypeCRCON)
	require.True(t, ok)
	res, err := e.Sync.Synchronize(ctx, i)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Forgotten+res.Lifted+res.Expired)
}

func TestSynchronizeAllSkipsUnhealthy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := testentry.Community(t, e.db, 100)
	fake := e.addFake(t, c.ID, constant.IntegrationTypeCRCON)
	fake.remote["stray"] = &integration.RemoteBan{RemoteID: "stray", PlayerID: steamID(1), Active: true}

	e.manager.MarkUnhealthy(integration.KeyOf(fake), "credentials revoked")
	assert.Empty(t, e.Sync.SynchronizeAll(ctx))
	assert.Empty(t, fake.expired)
}
