package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/model/types"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/jetstream"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/util/escalation"
	"barricade.gg/backend/internal/util/rekuest"
	"barricade.gg/backend/internal/util/respstats"
)

const defaultPendingLimit = 25

type Response struct {
	DB                *bun.DB
	PlayerReportRepo  *repo.PlayerReport
	ResponseRepo      *repo.PlayerReportResponse
	BanService        *Ban
	EscalationService *Escalation
	Events            jetstream.Publisher
}

func NewResponse(
	db *bun.DB,
	playerReportRepo *repo.PlayerReport,
	responseRepo *repo.PlayerReportResponse,
	banService *Ban,
	escalationService *Escalation,
	events jetstream.Publisher,
) *Response {
	return &Response{
		DB:                db,
		PlayerReportRepo:  playerReportRepo,
		ResponseRepo:      responseRepo,
		BanService:        banService,
		EscalationService: escalationService,
		Events:            events,
	}
}

// ResponseResult is the outcome of recording a response.
type ResponseResult struct {
	Response *model.PlayerReportResponse
	// Outcomes of the ban or unban dispatched for the responding community.
	// Empty when the response did not change the community's ban state.
	Outcomes integration.Outcomes
	Decision *escalation.Decision
}

// SetResponse records the verdict of a community on a player report,
// replacing any earlier verdict of the same community. A ban verdict is
// applied through the community's integrations; withdrawing the last ban
// verdict against the player reverses it.
func (s *Response) SetResponse(ctx context.Context, sub *types.ResponseSubmission) (*ResponseResult, error) {
	if err := rekuest.ValidStruct(sub); err != nil {
		return nil, err
	}
	if sub.Banned && sub.RejectReason != "" {
		return nil, bcerr.ErrInvalidReq.Msg("a ban response cannot carry a reject reason")
	}

	pr, err := s.PlayerReportRepo.GetPlayerReportByID(ctx, sub.PlayerReportID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("player report %d not found", sub.PlayerReportID)
	} else if err != nil {
		return nil, err
	}
	if pr.Report.Token.CommunityID == sub.CommunityID {
		return nil, bcerr.ErrInvalidReq.Msg("a community cannot respond to its own report")
	}

	previous, err := s.ResponseRepo.GetResponse(ctx, pr.ID, sub.CommunityID)
	if err != nil && !errors.Is(err, bcerr.ErrNotFound) {
		return nil, err
	}
	wasBanned := previous != nil && previous.Banned

	resp := &model.PlayerReportResponse{
		PlayerReportID: pr.ID,
		CommunityID:    sub.CommunityID,
		Banned:         sub.Banned,
		RejectReason:   null.NewString(string(sub.RejectReason), sub.RejectReason != ""),
		ResponderID:    sub.ResponderID,
		ResponderName:  sub.ResponderName,
		RespondedAt:    time.Now(),
	}
	if err := s.ResponseRepo.UpsertResponse(ctx, s.DB, resp); err != nil {
		return nil, err
	}

	result := &ResponseResult{Response: resp, Outcomes: integration.Outcomes{}}
	switch {
	case sub.Banned && !wasBanned:
		result.Outcomes = s.BanService.BanPlayer(ctx, pr, sub.CommunityID)
	case !sub.Banned && wasBanned:
		result.Outcomes, err = s.BanService.UnbanIfUnbacked(ctx, pr.PlayerID, pr.ReportID, sub.CommunityID)
		if err != nil {
			log.Error().
				Err(err).
				Str("evt.name", "response.unban.failed").
				Int64("community.id", sub.CommunityID).
				Str("player.id", pr.PlayerID).
				Msg("failed to reverse ban after response was withdrawn")
		}
	}

	publish(ctx, s.Events, constant.EventResponseSet, &types.ResponseEvent{
		ReportID:       pr.ReportID,
		PlayerReportID: pr.ID,
		PlayerID:       pr.PlayerID,
		CommunityID:    sub.CommunityID,
		Banned:         sub.Banned,
	})

	result.Decision, err = s.EscalationService.Evaluate(ctx, pr.ReportID)
	if err != nil {
		return nil, err
	}
	if result.Decision.Qualifies && sub.Banned {
		publish(ctx, s.Events, constant.EventReportEscalated, &types.EscalationEvent{
			ReportID:  pr.ReportID,
			Qualifies: true,
			Met:       result.Decision.Met(),
		})
	}

	log.Info().
		Str("evt.name", "response.set").
		Int64("community.id", sub.CommunityID).
		Int64("playerReport.id", pr.ID).
		Bool("banned", sub.Banned).
		Bool("escalation.qualifies", result.Decision.Qualifies).
		Msg("response recorded")

	return result, nil
}

// GetStats aggregates the responses to every player of the report.
func (s *Response) GetStats(ctx context.Context, reportID int64) (*model.ReportSummary, error) {
	report, err := s.EscalationService.ReportRepo.GetReportByID(ctx, reportID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return nil, bcerr.ErrNotFound.Msg("report %d not found", reportID)
	} else if err != nil {
		return nil, err
	}
	return s.EscalationService.Summarize(ctx, report)
}

// GetPlayerReportStats aggregates the responses to the given player reports
// in one pass.
func (s *Response) GetPlayerReportStats(ctx context.Context, prIDs []int64) (map[int64]*model.ResponseStats, error) {
	responses, err := s.ResponseRepo.GetResponsesByPlayerReportIDs(ctx, prIDs)
	if err != nil {
		return nil, err
	}
	return respstats.Compute(prIDs, responses), nil
}

// GetPendingResponses lists player reports of other communities the
// community has neither banned nor rejected yet.
func (s *Response) GetPendingResponses(ctx context.Context, communityID int64, limit int) ([]*model.PlayerReport, error) {
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	return s.ResponseRepo.GetPendingPlayerReports(ctx, communityID, limit)
}
