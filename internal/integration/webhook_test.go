package integration_test

import (
	"context"
	"crypto/hmac"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/bcerr"
)

const webhookSecret = "0123456789abcdef0123"

type webhookReceiver struct {
	events   []*integration.WebhookPayload
	reply    string
	status   int
	badSigns int
}

func (rcv *webhookReceiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if !hmac.Equal([]byte(r.Header.Get(integration.WebhookSignatureHeader)), []byte(integration.Sign(webhookSecret, body))) {
		rcv.badSigns++
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var p integration.WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil || p.Event != r.Header.Get(integration.WebhookEventHeader) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	rcv.events = append(rcv.events, &p)

	if rcv.status != 0 {
		w.WriteHeader(rcv.status)
		return
	}
	_, _ = io.WriteString(w, rcv.reply)
}

func newWebhook(t *testing.T, secret string) (*webhookReceiver, *integration.Webhook) {
	rcv := &webhookReceiver{}
	srv := httptest.NewServer(rcv)
	t.Cleanup(srv.Close)
	wh := integration.NewWebhook(model.Integration{
		ID:              3,
		CommunityID:     10,
		IntegrationType: constant.IntegrationTypeWebhook,
		Enabled:         true,
		APIURL:          srv.URL,
		APIKey:          secret,
	}, srv.Client())
	return rcv, wh
}

func TestWebhookBanSignedPayload(t *testing.T) {
	rcv, wh := newWebhook(t, webhookSecret)

	remoteID, err := wh.ApplyBan(context.Background(), &integration.BanRequest{
		PlayerID:   "76561198000000001",
		PlayerName: "cheater",
		Reason:     "Hacking",
		ReportID:   5,
	})
	require.NoError(t, err)
	require.Len(t, rcv.events, 1)

	ev := rcv.events[0]
	assert.Equal(t, "ban", ev.Event)
	assert.Equal(t, int64(10), ev.CommunityID)
	assert.Equal(t, int64(5), ev.ReportID)
	assert.Equal(t, ev.ID, remoteID)
	assert.False(t, ev.SentAt.IsZero())
}

func TestWebhookBanUsesReceiverID(t *testing.T) {
	rcv, wh := newWebhook(t, webhookSecret)
	rcv.reply = `{"id":"local-77"}`

	remoteID, err := wh.ApplyBan(context.Background(), &integration.BanRequest{PlayerID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "local-77", remoteID)
}

func TestWebhookUnban(t *testing.T) {
	rcv, wh := newWebhook(t, webhookSecret)

	require.NoError(t, wh.ReverseBan(context.Background(), &integration.UnbanRequest{PlayerID: "p1", RemoteID: "local-77"}))
	require.Len(t, rcv.events, 1)
	assert.Equal(t, "unban", rcv.events[0].Event)
	assert.Equal(t, "local-77", rcv.events[0].RemoteID)

	rcv.status = http.StatusGone
	assert.ErrorIs(t, wh.ReverseBan(context.Background(), &integration.UnbanRequest{PlayerID: "p1"}), integration.ErrRemoteBanNotFound)
}

func TestWebhookValidate(t *testing.T) {
	rcv, wh := newWebhook(t, webhookSecret)
	require.NoError(t, wh.Validate(context.Background(), &model.Community{ID: 10}))
	assert.Equal(t, "ping", rcv.events[0].Event)

	rcv.status = http.StatusInternalServerError
	assert.ErrorIs(t, wh.Validate(context.Background(), &model.Community{ID: 10}), bcerr.ErrIntegrationConfig)

	_, wrongSecret := newWebhook(t, "another-secret-of-length")
	err := wrongSecret.Validate(context.Background(), &model.Community{ID: 10})
	var ce *integration.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "credentials were rejected", ce.Reason)
}

func TestFactoryValidatesShape(t *testing.T) {
	f := integration.NewFactoryWithClient(http.DefaultClient, "https://api.battlemetrics.com")

	_, err := f.New(&model.Integration{
		CommunityID:     1,
		IntegrationType: constant.IntegrationTypeWebhook,
		APIURL:          "not a url",
		APIKey:          "short",
	})
	assert.ErrorIs(t, err, bcerr.ErrIntegrationConfig)

	i, err := f.New(&model.Integration{
		CommunityID:     1,
		IntegrationType: constant.IntegrationTypeWebhook,
		APIURL:          "https://example.com/hook",
		APIKey:          webhookSecret,
	})
	require.NoError(t, err)
	assert.IsType(t, &integration.Webhook{}, i)
}
