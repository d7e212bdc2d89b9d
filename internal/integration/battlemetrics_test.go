package integration_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/bcerr"
)

type bmServer struct {
	t      *testing.T
	srv    *httptest.Server
	status int
	bans   []gjson.Result
	orgHit int
}

func newBattleMetrics(t *testing.T) *bmServer {
	s := &bmServer{t: t}
	s.srv = httptest.NewServer(s)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *bmServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasPrefix(r.URL.Path, "/organizations/"):
		s.orgHit++
		_, _ = io.WriteString(w, `{"data":{"type":"organization","id":"55","attributes":{"name":"Alpha Org"}}}`)
	case r.Method == http.MethodPost && r.URL.Path == "/ban-lists":
		_, _ = io.WriteString(w, `{"data":{"type":"banList","id":"6b8ee9a2-77b1-4c28-9f4b-7a9a1b6e7f0a"}}`)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/ban-lists/"):
		_, _ = io.WriteString(w, `{"data":{"type":"banList","id":"`+strings.TrimPrefix(r.URL.Path, "/ban-lists/")+`","relationships":{"owner":{"data":{"type":"organization","id":"55"}}}}}`)
	case r.Method == http.MethodPost && r.URL.Path == "/bans":
		s.bans = append(s.bans, gjson.ParseBytes(body))
		_, _ = io.WriteString(w, `{"data":{"type":"ban","id":"9001"}}`)
	case r.Method == http.MethodDelete && r.URL.Path == "/bans/9001":
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodGet && r.URL.Path == "/bans":
		if r.URL.Query().Get("page[key]") == "" {
			_, _ = io.WriteString(w, `{"data":[
				{"id":"1","attributes":{"expires":null,"identifiers":[{"type":"name","identifier":"x"},{"type":"steamID","identifier":"76561198000000001"}]}},
				{"id":"2","attributes":{"expires":"2001-01-01T00:00:00Z","identifiers":[{"type":"steamID","identifier":"76561198000000002"}]}}
			],"links":{"next":"`+s.srv.URL+`/bans?page[key]=2"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":[
			{"id":"3","attributes":{"expires":"2999-01-01T00:00:00Z","identifiers":[{"type":"hllWindowsID","identifier":"0b6e1f1c-9d3e-4e2b-8f5a-3c1d2e4f5a6b"}]}}
		],"links":{}}`)
	default:
		s.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func bmConfig(orgID string) model.Integration {
	return model.Integration{
		ID:              2,
		CommunityID:     10,
		IntegrationType: constant.IntegrationTypeBattleMetrics,
		Enabled:         true,
		APIKey:          "token",
		OrganizationID:  null.StringFrom(orgID),
		BanlistID:       null.StringFrom("6b8ee9a2-77b1-4c28-9f4b-7a9a1b6e7f0a"),
	}
}

func TestBattleMetricsApplyBanTruncatesReason(t *testing.T) {
	s := newBattleMetrics(t)
	bm := integration.NewBattleMetrics(bmConfig("55"), s.srv.URL, s.srv.Client())

	reason := strings.Repeat("é", 200)
	remoteID, err := bm.ApplyBan(context.Background(), &integration.BanRequest{
		PlayerID:   "76561198000000001",
		PlayerName: "cheater",
		Reason:     reason,
		ReportID:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, "9001", remoteID)

	require.Len(t, s.bans, 1)
	got := s.bans[0]
	sent := got.Get("data.attributes.reason").String()
	assert.LessOrEqual(t, len(sent), 255)
	assert.True(t, utf8.ValidString(sent))
	assert.True(t, strings.HasSuffix(sent, ".."))
	assert.Contains(t, got.Get("data.attributes.note").String(), reason)
	assert.Equal(t, "steamID", got.Get("data.attributes.identifiers.0.type").String())
	assert.Equal(t, "55", got.Get("data.relationships.organization.data.id").String())
	assert.Equal(t, "6b8ee9a2-77b1-4c28-9f4b-7a9a1b6e7f0a", got.Get("data.relationships.banList.data.id").String())
}

func TestBattleMetricsReverseBan(t *testing.T) {
	s := newBattleMetrics(t)
	bm := integration.NewBattleMetrics(bmConfig("55"), s.srv.URL, s.srv.Client())

	require.NoError(t, bm.ReverseBan(context.Background(), &integration.UnbanRequest{RemoteID: "9001"}))
	assert.ErrorIs(t, bm.ReverseBan(context.Background(), &integration.UnbanRequest{RemoteID: "1"}), integration.ErrRemoteBanNotFound)
}

func TestBattleMetricsRejectedCredentials(t *testing.T) {
	s := newBattleMetrics(t)
	s.status = http.StatusUnauthorized
	bm := integration.NewBattleMetrics(bmConfig("56"), s.srv.URL, s.srv.Client())

	_, err := bm.ApplyBan(context.Background(), &integration.BanRequest{PlayerID: "76561198000000001"})
	assert.ErrorIs(t, err, bcerr.ErrIntegrationConfig)

	err = bm.Validate(context.Background(), &model.Community{ID: 10})
	var ce *integration.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "credentials were rejected", ce.Reason)
}

func TestBattleMetricsValidate(t *testing.T) {
	s := newBattleMetrics(t)

	cfg := bmConfig("57")
	cfg.BanlistID = null.String{}
	bm := integration.NewBattleMetrics(cfg, s.srv.URL, s.srv.Client())
	require.NoError(t, bm.Validate(context.Background(), &model.Community{ID: 10, Name: "Alpha"}))
	assert.Equal(t, "6b8ee9a2-77b1-4c28-9f4b-7a9a1b6e7f0a", bm.Config().BanlistID.String)

	// the owner of the existing list is organization 55
	require.NoError(t, integration.NewBattleMetrics(bmConfig("55"), s.srv.URL, s.srv.Client()).
		Validate(context.Background(), &model.Community{ID: 10}))
	err := integration.NewBattleMetrics(bmConfig("58"), s.srv.URL, s.srv.Client()).
		Validate(context.Background(), &model.Community{ID: 10})
	assert.ErrorIs(t, err, bcerr.ErrIntegrationConfig)
}

func TestBattleMetricsInstanceNameCached(t *testing.T) {
	s := newBattleMetrics(t)
	bm := integration.NewBattleMetrics(bmConfig("59"), s.srv.URL, s.srv.Client())

	for i := 0; i < 3; i++ {
		name, err := bm.InstanceName(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Alpha Org", name)
	}
	assert.Equal(t, 1, s.orgHit)
}

func TestBattleMetricsRemoteBansFollowsPages(t *testing.T) {
	s := newBattleMetrics(t)
	bm := integration.NewBattleMetrics(bmConfig("55"), s.srv.URL, s.srv.Client())

	bans, err := bm.RemoteBans(context.Background())
	require.NoError(t, err)
	require.Len(t, bans, 3)
	assert.Equal(t, "76561198000000001", bans["1"].PlayerID)
	assert.True(t, bans["1"].Active)
	assert.False(t, bans["2"].Active)
	assert.True(t, bans["3"].Active)
	assert.Equal(t, "0b6e1f1c-9d3e-4e2b-8f5a-3c1d2e4f5a6b", bans["3"].PlayerID)
}
