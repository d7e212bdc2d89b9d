package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/model"
	modelcache "barricade.gg/backend/internal/model/cache"
	"barricade.gg/backend/internal/pkg/jetstream"
	"barricade.gg/backend/internal/pkg/testentry"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/service"
	"barricade.gg/backend/internal/util/escalation"
)

type env struct {
	db      *bun.DB
	conf    *appconfig.Config
	manager *integration.Manager
	events  *jetstream.Recorder
	caches  *modelcache.Caches

	playerBans *repo.PlayerBan
	responses  *repo.PlayerReportResponse

	Token        *service.Token
	Report       *service.Report
	Response     *service.Response
	Escalation   *service.Escalation
	Community    *service.Community
	Integration  *service.Integration
	Sync         *service.Sync
	BanService   *service.Ban
	Watchlist    *service.Watchlist
	integrations *repo.Integration
}

func testConfig() *appconfig.Config {
	return &appconfig.Config{ConfigSpec: appconfig.ConfigSpec{
		ReportTokenTTL:             time.Hour,
		MaxAdminLimit:              2,
		MaxIntegrationLimit:        2,
		EscalationReasonMask:       appconfig.ReasonMask(constant.ReasonHacking),
		EscalationMinResponses:     2,
		EscalationMaxRejects:       0,
		IntegrationDispatchTimeout: time.Second,
		IntegrationValidateTimeout: 5 * time.Second,
		PlayerReportedCacheTTL:     time.Minute,
		BattleMetricsAPIURL:        "https://api.battlemetrics.com",
	}}
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testentry.DB(t)
	conf := testConfig()

	e := &env{
		db:     db,
		conf:   conf,
		events: jetstream.NewRecorder(),
		caches: modelcache.NewLocal(),
	}

	adminRepo := repo.NewAdmin(db)
	communityRepo := repo.NewCommunity(db)
	reportRepo := repo.NewReport(db)
	tokenRepo := repo.NewReportToken(db)
	playerRepo := repo.NewPlayer(db)
	playerReportRepo := repo.NewPlayerReport(db)
	e.responses = repo.NewPlayerReportResponse(db)
	e.playerBans = repo.NewPlayerBan(db)
	e.integrations = repo.NewIntegration(db)

	e.manager = integration.NewManager(conf, e.playerBans)
	t.Cleanup(func() { _ = e.manager.Close() })

	e.Token = service.NewToken(conf, db, tokenRepo, adminRepo, communityRepo)
	e.BanService = service.NewBan(e.manager, e.responses)
	e.Escalation = service.NewEscalation(escalation.NewFromConfig(conf), reportRepo, e.responses)
	e.Watchlist = service.NewWatchlist(db, repo.NewPlayerWatchlist(db), playerRepo, communityRepo)
	e.Report = service.NewReport(conf, db, e.Token, e.BanService, e.Watchlist, reportRepo, playerRepo, playerReportRepo, e.responses, e.caches, e.events)
	e.Response = service.NewResponse(db, playerReportRepo, e.responses, e.BanService, e.Escalation, e.events)
	e.Community = service.NewCommunity(conf, db, communityRepo, adminRepo)
	e.Integration = service.NewIntegration(conf, e.integrations, communityRepo, e.playerBans,
		integration.NewFactoryWithClient(integration.NewHTTPClient(), conf.BattleMetricsAPIURL), e.manager, e.events)
	e.Sync = service.NewSync(e.manager, e.playerBans, e.responses)

	return e
}

// fakeIntegration records the bans it receives and can be told to fail.
type fakeIntegration struct {
	cfg model.Integration

	mu       sync.Mutex
	fail     error
	banned   map[string]bool
	remote   map[string]*integration.RemoteBan
	expired  []string
	next     int
	unbanned []string
}

var (
	_ integration.Integration  = (*fakeIntegration)(nil)
	_ integration.Synchronizer = (*fakeIntegration)(nil)
)

// addFake stores an enabled integration row for the community and registers
// a fake for it.
func (e *env) addFake(t *testing.T, communityID int64, typ constant.IntegrationType) *fakeIntegration {
	t.Helper()
	row := &model.Integration{
		CommunityID:     communityID,
		IntegrationType: typ,
		Enabled:         true,
		APIURL:          "https://example.com/api",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := e.integrations.SaveIntegration(context.Background(), row); err != nil {
		t.Fatal(err)
	}
	f := &fakeIntegration{
		cfg:    *row,
		banned: map[string]bool{},
		remote: map[string]*integration.RemoteBan{},
	}
	e.manager.Add(f)
	return f
}

func (f *fakeIntegration) Config() model.Integration { return f.cfg }

func (f *fakeIntegration) ApplyBan(_ context.Context, req *integration.BanRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.next++
	id := fmt.Sprintf("%d-%d", f.cfg.ID, f.next)
	f.banned[req.PlayerID] = true
	f.remote[id] = &integration.RemoteBan{RemoteID: id, PlayerID: req.PlayerID, Active: true}
	return id, nil
}

func (f *fakeIntegration) ReverseBan(_ context.Context, req *integration.UnbanRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	delete(f.banned, req.PlayerID)
	delete(f.remote, req.RemoteID)
	f.unbanned = append(f.unbanned, req.PlayerID)
	return nil
}

func (f *fakeIntegration) Validate(context.Context, *model.Community) error { return nil }

func (f *fakeIntegration) Close() error { return nil }

func (f *fakeIntegration) RemoteBans(context.Context) (map[string]*integration.RemoteBan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*integration.RemoteBan, len(f.remote))
	for k, v := range f.remote {
		rb := *v
		out[k] = &rb
	}
	return out, nil
}

func (f *fakeIntegration) ExpireRemoteBan(_ context.Context, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, remoteID)
	if rb, ok := f.remote[remoteID]; ok {
		rb.Active = false
	}
	return nil
}

func (f *fakeIntegration) isBanned(playerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banned[playerID]
}

// steamID returns a valid Steam64 id.
func steamID(n int) string {
	return fmt.Sprintf("7656119%010d", n)
}
