package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/testentry"
)

const webhookSecret = "0123456789abcdef0123"

func receiver(t *testing.T, status *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func webhookPayload(url string) []byte {
	return []byte(fmt.Sprintf(`{"url":%q,"secret":%q}`, url, webhookSecret))
}

func TestConfigureWebhook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := testentry.Community(t, e.db, 100)

	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := receiver(t, &status)

	row, err := e.Integration.Configure(ctx, c.ID, constant.IntegrationTypeWebhook, webhookPayload(srv.URL))
	require.NoError(t, err)
	assert.True(t, row.Enabled)
	assert.Equal(t, srv.URL, row.APIURL)
	assert.NotZero(t, row.ID)

	_, loaded := e.manager.Get(c.ID, constant.IntegrationTypeWebhook)
	assert.True(t, loaded)
	assert.Contains(t, e.events.Subjects(), constant.EventIntegrationUpdate)

	name, err := e.Integration.InstanceName(ctx, c.ID, constant.IntegrationTypeWebhook)
	require.NoError(t, err)
	assert.NotEmpty(t, name)

	// a receiver that stops acknowledging leaves the integration stored but disabled
	status.Store(http.StatusInternalServerError)
	_, err = e.Integration.Configure(ctx, c.ID, constant.IntegrationTypeWebhook, webhookPayload(srv.URL))
	assert.ErrorIs(t, err, bcerr.ErrIntegrationConfig)

	rows, err := e.Integration.List(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Enabled)
	_, loaded = e.manager.Get(c.ID, constant.IntegrationTypeWebhook)
	assert.False(t, loaded)

	status.Store(http.StatusOK)
	enabled, err := e.Integration.Enable(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)
	_, loaded = e.manager.Get(c.ID, constant.IntegrationTypeWebhook)
	assert.True(t, loaded)

	disabled, err := e.Integration.Disable(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)
	_, loaded = e.manager.Get(c.ID, constant.IntegrationTypeWebhook)
	assert.False(t, loaded)
}

func TestConfigureRejectsMalformedPayload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := testentry.Community(t, e.db, 100)

	cases := map[constant.IntegrationType]string{
		constant.IntegrationTypeWebhook:       `{"url":"not a url","secret":"0123456789abcdef"}`,
		constant.IntegrationTypeCRCON:         `{"apiUrl":"https://rcon.example.com","apiKey":"k"}`,
		constant.IntegrationTypeBattleMetrics: `{"apiKey":"k","organizationId":"abc"}`,
		"teamspeak":                           `{}`,
	}
	for typ, payload := range cases {
		t.Run(string(typ), func(t *testing.T) {
			_, err := e.Integration.Configure(ctx, c.ID, typ, []byte(payload))
			assert.ErrorIs(t, err, bcerr.ErrInvalidReq)
		})
	}

	_, err := e.Integration.Configure(ctx, c.ID, constant.IntegrationTypeWebhook, []byte(`{"url":`))
	assert.ErrorIs(t, err, bcerr.ErrInvalidReq)

	rows, err := e.Integration.List(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestConfigureLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := testentry.Community(t, e.db, 100)
	e.addFake(t, c.ID, constant.IntegrationTypeCRCON)
	e.addFake(t, c.ID, constant.IntegrationTypeBattleMetrics)

	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := receiver(t, &status)

	_, err := e.Integration.Configure(ctx, c.ID, constant.IntegrationTypeWebhook, webhookPayload(srv.URL))
	assert.ErrorIs(t, err, bcerr.ErrLimitReached)
}

func TestRemoveIntegrationDropsBanRecords(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reporter := testentry.Community(t, e.db, 100)
	responder := testentry.Community(t, e.db, 200)
	fake := e.addFake(t, responder.ID, constant.IntegrationTypeWebhook)

	report := reportWith(t, e, reporter, steamID(1))
	ban(t, e, report.Players[0], responder)
	require.True(t, fake.isBanned(steamID(1)))

	require.NoError(t, e.Integration.Remove(ctx, fake.cfg.ID))

	_, loaded := e.manager.Get(responder.ID, constant.IntegrationTypeWebhook)
	assert.False(t, loaded)
	_, err := e.playerBans.GetBan(ctx, steamID(1), fake.cfg.ID)
	assert.ErrorIs(t, err, bcerr.ErrNotFound)
	// the remote ban stays in place
	assert.True(t, fake.isBanned(steamID(1)))

	err = e.Integration.Remove(ctx, fake.cfg.ID)
	assert.ErrorIs(t, err, bcerr.ErrNotFound)
}
