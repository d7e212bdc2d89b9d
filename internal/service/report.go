package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
	modelcache "barricade.gg/backend/internal/model/cache"
	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/cache"
	"barricade.gg/backend/internal/pkg/jetstream"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/util"
	"barricade.gg/backend/internal/util/rekuest"
)

type Report struct {
	DB               *bun.DB
	TokenService     *Token
	BanService       *Ban
	Watchlist        *Watchlist
	ReportRepo       *repo.Report
	PlayerRepo       *repo.Player
	PlayerReportRepo *repo.PlayerReport
	ResponseRepo     *repo.PlayerReportResponse
	Caches           *modelcache.Caches
	Events           jetstream.Publisher

	conf *appconfig.Config
}

func NewReport(
	conf *appconfig.Config,
	db *bun.DB,
	tokenService *Token,
	banService *Ban,
	watchlist *Watchlist,
	reportRepo *repo.Report,
	playerRepo *repo.Player,
	playerReportRepo *repo.PlayerReport,
	responseRepo *repo.PlayerReportResponse,
	caches *modelcache.Caches,
	events jetstream.Publisher,
) *Report {
	return &Report{
		DB:               db,
		TokenService:     tokenService,
		BanService:       banService,
		Watchlist:        watchlist,
		ReportRepo:       reportRepo,
		PlayerRepo:       playerRepo,
		PlayerReportRepo: playerReportRepo,
		ResponseRepo:     responseRepo,
		Caches:           caches,
		Events:           events,
		conf:             conf,
	}
}

// detachedPlayer is a player removed from a report together with the
// communities that had banned them on it.
type detachedPlayer struct {
	playerID    string
	communities []int64
}

// Submit stores the report submitted with a report token. A token that was
// reissued for an existing report edits that report instead. Token
// consumption and the report write happen in one transaction.
func (s *Report) Submit(ctx context.Context, sub *types.ReportSubmission) (*model.Report, error) {
	if err := rekuest.ValidStruct(sub); err != nil {
		return nil, err
	}
	for _, p := range sub.Players {
		if _, err := util.ClassifyPlayerID(p.PlayerID); err != nil {
			return nil, err
		}
	}

	var (
		reportID int64
		edited   bool
		detached []*detachedPlayer
		involved []string
	)
	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := s.TokenService.validate(ctx, tx, sub.Token)
		if err != nil {
			return err
		}
		reportID = token.ID

		exists, err := s.ReportRepo.ReportExists(ctx, tx, token.ID)
		if err != nil {
			return err
		}
		if err := s.TokenService.consume(ctx, tx, token); err != nil {
			return err
		}

		now := s.TokenService.now()
		players := lo.Map(sub.Players, func(p types.PlayerSubmission, _ int) *model.Player {
			return &model.Player{ID: p.PlayerID, Name: p.PlayerName, CreatedAt: now}
		})
		if err := s.PlayerRepo.UpsertPlayers(ctx, tx, players); err != nil {
			return err
		}

		if !exists {
			involved = lo.Map(sub.Players, func(p types.PlayerSubmission, _ int) string { return p.PlayerID })
			return s.create(ctx, tx, token, sub)
		}

		edited = true
		detached, involved, err = s.edit(ctx, tx, token, sub)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, d := range detached {
		if _, err := s.BanService.UnbanIfUnbacked(ctx, d.playerID, reportID, d.communities...); err != nil {
			log.Error().
				Err(err).
				Str("evt.name", "report.unban.failed").
				Int64("report.id", reportID).
				Str("player.id", d.playerID).
				Msg("failed to reverse bans of player removed from report")
		}
	}
	s.invalidatePlayers(ctx, involved)

	report, err := s.ReportRepo.GetReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	subject := constant.EventReportCreated
	if edited {
		subject = constant.EventReportEdited
	}
	evt := reportEvent(report)
	evt.Watchers = s.watchers(ctx, report.ID, evt.PlayerIDs)
	publish(ctx, s.Events, subject, evt)

	log.Info().
		Str("evt.name", lo.Ternary(edited, "report.edit", "report.create")).
		Int64("report.id", report.ID).
		Int64("community.id", report.Token.CommunityID).
		Int("players", len(report.Players)).
		Msg("report stored")

	return report, nil
}

func (s *Report) create(ctx context.Context, tx bun.Tx, token *model.ReportToken, sub *types.ReportSubmission) error {
	now := s.TokenService.now()
	report := &model.Report{
		ID:             token.ID,
		Body:           sub.Body,
		ReasonsBitflag: sub.ReasonsBitflag,
		ReasonsCustom:  null.NewString(sub.ReasonsCustom, sub.ReasonsCustom != ""),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ReportRepo.CreateReport(ctx, tx, report); err != nil {
		return err
	}

	prs := lo.Map(sub.Players, func(p types.PlayerSubmission, _ int) *model.PlayerReport {
		return &model.PlayerReport{ReportID: report.ID, PlayerID: p.PlayerID, PlayerName: p.PlayerName}
	})
	return s.PlayerReportRepo.CreatePlayerReports(ctx, tx, prs)
}

// edit applies sub onto the existing report. Players missing from sub are
// detached together with their responses. It returns the detached players and
// the ids of every player involved.
func (s *Report) edit(ctx context.Context, tx bun.Tx, token *model.ReportToken, sub *types.ReportSubmission) ([]*detachedPlayer, []string, error) {
	report, err := s.ReportRepo.GetReportByIDWith(ctx, tx, token.ID)
	if err != nil {
		return nil, nil, err
	}

	report.Body = sub.Body
	report.ReasonsBitflag = sub.ReasonsBitflag
	report.ReasonsCustom = null.NewString(sub.ReasonsCustom, sub.ReasonsCustom != "")
	report.UpdatedAt = s.TokenService.now()
	if err := s.ReportRepo.UpdateReport(ctx, tx, report); err != nil {
		return nil, nil, err
	}

	submitted := lo.SliceToMap(sub.Players, func(p types.PlayerSubmission) (string, string) {
		return p.PlayerID, p.PlayerName
	})
	existing := lo.KeyBy(report.Players, func(pr *model.PlayerReport) string { return pr.PlayerID })

	var (
		renamed []*model.PlayerReport
		removed []*model.PlayerReport
	)
	for _, pr := range report.Players {
		name, ok := submitted[pr.PlayerID]
		if !ok {
			removed = append(removed, pr)
			continue
		}
		if name != pr.PlayerName {
			pr.PlayerName = name
			renamed = append(renamed, pr)
		}
	}
	added := lo.FilterMap(sub.Players, func(p types.PlayerSubmission, _ int) (*model.PlayerReport, bool) {
		_, ok := existing[p.PlayerID]
		return &model.PlayerReport{ReportID: report.ID, PlayerID: p.PlayerID, PlayerName: p.PlayerName}, !ok
	})

	detached := make([]*detachedPlayer, 0, len(removed))
	for _, pr := range removed {
		communities, err := s.ResponseRepo.GetBanningCommunityIDs(ctx, tx, []int64{pr.ID})
		if err != nil {
			return nil, nil, err
		}
		detached = append(detached, &detachedPlayer{playerID: pr.PlayerID, communities: communities})
	}

	removedIDs := lo.Map(removed, func(pr *model.PlayerReport, _ int) int64 { return pr.ID })
	if err := s.PlayerReportRepo.DeletePlayerReports(ctx, tx, removedIDs); err != nil {
		return nil, nil, err
	}
	if err := s.PlayerReportRepo.UpdatePlayerNames(ctx, tx, renamed); err != nil {
		return nil, nil, err
	}
	if err := s.PlayerReportRepo.CreatePlayerReports(ctx, tx, added); err != nil {
		return nil, nil, err
	}

	involved := append(lo.Keys(submitted), lo.Map(removed, func(pr *model.PlayerReport, _ int) string { return pr.PlayerID })...)
	return detached, involved, nil
}

// Delete removes the report and reverses the bans that no longer have a ban
// response backing them.
func (s *Report) Delete(ctx context.Context, reportID int64) error {
	var (
		report   *model.Report
		detached []*detachedPlayer
	)
	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		report, err = s.ReportRepo.GetReportByIDWith(ctx, tx, reportID)
		if err != nil {
			return err
		}

		for _, pr := range report.Players {
			communities, err := s.ResponseRepo.GetBanningCommunityIDs(ctx, tx, []int64{pr.ID})
			if err != nil {
				return err
			}
			detached = append(detached, &detachedPlayer{playerID: pr.PlayerID, communities: communities})
		}

		prIDs := lo.Map(report.Players, func(pr *model.PlayerReport, _ int) int64 { return pr.ID })
		if err := s.PlayerReportRepo.DeletePlayerReports(ctx, tx, prIDs); err != nil {
			return err
		}
		return s.ReportRepo.DeleteReport(ctx, tx, reportID)
	})
	if err != nil {
		return err
	}

	for _, d := range detached {
		if _, err := s.BanService.UnbanIfUnbacked(ctx, d.playerID, reportID, d.communities...); err != nil {
			log.Error().
				Err(err).
				Str("evt.name", "report.unban.failed").
				Int64("report.id", reportID).
				Str("player.id", d.playerID).
				Msg("failed to reverse bans of player of deleted report")
		}
	}
	s.invalidatePlayers(ctx, lo.Map(report.Players, func(pr *model.PlayerReport, _ int) string { return pr.PlayerID }))

	publish(ctx, s.Events, constant.EventReportDeleted, reportEvent(report))

	log.Info().
		Str("evt.name", "report.delete").
		Int64("report.id", reportID).
		Int64("community.id", report.Token.CommunityID).
		Msg("report deleted")
	return nil
}

func (s *Report) Get(ctx context.Context, reportID int64) (*model.Report, error) {
	report, err := s.ReportRepo.GetReportByID(ctx, reportID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("report %d not found", reportID)
	}
	return report, err
}

// IsPlayerReported reports whether the player has been flagged in any report.
func (s *Report) IsPlayerReported(ctx context.Context, playerID string) (bool, error) {
	return cache.GetSet(ctx, s.Caches.PlayerReported, playerID, func() (bool, error) {
		return s.PlayerReportRepo.IsPlayerReported(ctx, playerID)
	}, s.conf.PlayerReportedCacheTTL)
}

func (s *Report) invalidatePlayers(ctx context.Context, playerIDs []string) {
	for _, id := range lo.Uniq(playerIDs) {
		if err := s.Caches.PlayerReported.Delete(ctx, id); err != nil {
			log.Warn().
				Err(err).
				Str("evt.name", "report.cache.invalidate.failed").
				Str("player.id", id).
				Msg("failed to invalidate player cache")
		}
	}
}

// watchers looks up the communities watching the reported players. A failed
// lookup leaves the event without watchers.
func (s *Report) watchers(ctx context.Context, reportID int64, playerIDs []string) map[string][]int64 {
	watchers, err := s.Watchlist.Watchers(ctx, playerIDs)
	if err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "report.watchlist.failed").
			Int64("report.id", reportID).
			Msg("failed to look up watchlists of reported players")
		return nil
	}
	for playerID, communities := range watchers {
		log.Info().
			Str("evt.name", "report.watchlist.hit").
			Int64("report.id", reportID).
			Str("player.id", playerID).
			Ints64("community.ids", communities).
			Msg("watchlisted player reported")
	}
	return watchers
}

func reportEvent(report *model.Report) *types.ReportEvent {
	e := &types.ReportEvent{
		ReportID:  report.ID,
		PlayerIDs: lo.Map(report.Players, func(pr *model.PlayerReport, _ int) string { return pr.PlayerID }),
	}
	if report.Token != nil {
		e.CommunityID = report.Token.CommunityID
	}
	return e
}
