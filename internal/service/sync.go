package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/observability"
	"barricade.gg/backend/internal/repo"
)

// Sync reconciles the ban records with the bans the integrations hold remotely.
type Sync struct {
	Manager       *integration.Manager
	PlayerBanRepo *repo.PlayerBan
	ResponseRepo  *repo.PlayerReportResponse
}

func NewSync(manager *integration.Manager, playerBanRepo *repo.PlayerBan, responseRepo *repo.PlayerReportResponse) *Sync {
	return &Sync{
		Manager:       manager,
		PlayerBanRepo: playerBanRepo,
		ResponseRepo:  responseRepo,
	}
}

type SyncResult struct {
	// Forgotten counts ban records dropped because the remote ban is gone.
	Forgotten int
	// Lifted counts ban records dropped because the remote ban was lifted.
	// The community's ban responses against those players are reset.
	Lifted int
	// Expired counts active remote bans no record exists for, which were expired.
	Expired int
}

// SynchronizeAll synchronizes every enabled and healthy integration able to
// list its remote bans. A failing integration does not stop the others.
func (s *Sync) SynchronizeAll(ctx context.Context) map[integration.Key]error {
	errs := map[integration.Key]error{}
	for _, i := range s.Manager.Integrations() {
		cfg := i.Config()
		key := integration.KeyOf(i)
		if _, ok := i.(integration.Synchronizer); !ok || !cfg.Enabled || !s.Manager.Healthy(key) {
			continue
		}

		start := time.Now()
		res, err := s.Synchronize(ctx, i)
		observability.WorkerSyncDuration.
			WithLabelValues(string(cfg.IntegrationType)).
			Set(time.Since(start).Seconds())
		if err != nil {
			log.Error().
				Err(err).
				Str("evt.name", "sync.failed").
				Int64("community.id", cfg.CommunityID).
				Int64("integration.id", cfg.ID).
				Str("integration.type", string(cfg.IntegrationType)).
				Msg("failed to synchronize integration")
			errs[key] = err
			continue
		}

		log.Info().
			Str("evt.name", "sync.done").
			Int64("community.id", cfg.CommunityID).
			Int64("integration.id", cfg.ID).
			Int("forgotten", res.Forgotten).
			Int("lifted", res.Lifted).
			Int("expired", res.Expired).
			Msg("integration synchronized")
	}
	return errs
}

// Synchronize reconciles the records of one integration with its remote bans.
func (s *Sync) Synchronize(ctx context.Context, i integration.Integration) (*SyncResult, error) {
	syncer, ok := i.(integration.Synchronizer)
	if !ok {
		return nil, errors.Errorf("%s integration cannot list remote bans", i.Config().IntegrationType)
	}
	cfg := i.Config()

	remote, err := syncer.RemoteBans(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list remote bans")
	}
	local, err := s.PlayerBanRepo.GetBansByIntegration(ctx, cfg.ID)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{}
	for _, ban := range local {
		rb, ok := remote[ban.RemoteID]
		switch {
		case !ok:
			res.Forgotten++
		case !rb.Active:
			if _, err := s.ResponseRepo.ExpireBansOfPlayer(ctx, ban.PlayerID, cfg.CommunityID); err != nil {
				return res, err
			}
			res.Lifted++
		default:
			continue
		}
		if err := s.PlayerBanRepo.DeleteBan(ctx, ban.ID); err != nil {
			return res, err
		}
	}

	known := lo.SliceToMap(local, func(b *model.PlayerBan) (string, struct{}) { return b.RemoteID, struct{}{} })
	for id, rb := range remote {
		if _, ok := known[id]; ok || !rb.Active {
			continue
		}
		log.Warn().
			Str("evt.name", "sync.unknown_ban").
			Int64("community.id", cfg.CommunityID).
			Int64("integration.id", cfg.ID).
			Str("remote.id", id).
			Str("player.id", rb.PlayerID).
			Msg("remote ban list holds a ban with no local record, expiring it")
		if err := syncer.ExpireRemoteBan(ctx, id); err != nil {
			return res, errors.Wrapf(err, "expire remote ban %s", id)
		}
		res.Expired++
	}
	return res, nil
}
