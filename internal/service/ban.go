package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"barricade.gg/backend/internal/integration"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo"
)

// Ban turns ban responses into integration dispatches.
type Ban struct {
	Manager      *integration.Manager
	ResponseRepo *repo.PlayerReportResponse
}

func NewBan(manager *integration.Manager, responseRepo *repo.PlayerReportResponse) *Ban {
	return &Ban{
		Manager:      manager,
		ResponseRepo: responseRepo,
	}
}

func banReason(report *model.Report) string {
	return fmt.Sprintf("Banned via shared report (#%d): %s", report.ID, strings.Join(report.ReasonNames(), ", "))
}

// BanPlayer applies the ban of the reported player through the integrations
// of the banning community. pr must carry its report.
func (s *Ban) BanPlayer(ctx context.Context, pr *model.PlayerReport, communityID int64) integration.Outcomes {
	outcomes := s.Manager.DispatchBan(ctx, &integration.BanRequest{
		PlayerID:   pr.PlayerID,
		PlayerName: pr.PlayerName,
		Reason:     banReason(pr.Report),
		ReportID:   pr.ReportID,
	}, integration.WithCommunities(communityID))

	logOutcomes(outcomes, "ban", pr.PlayerID, pr.ReportID)
	return outcomes
}

// UnbanIfUnbacked reverses the bans of the player held by each of the given
// communities that no longer hold a ban response against the player on any
// report.
func (s *Ban) UnbanIfUnbacked(ctx context.Context, playerID string, reportID int64, communityIDs ...int64) (integration.Outcomes, error) {
	unbacked := make([]int64, 0, len(communityIDs))
	for _, communityID := range lo.Uniq(communityIDs) {
		n, err := s.ResponseRepo.CountBannedResponses(ctx, playerID, communityID)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			unbacked = append(unbacked, communityID)
		}
	}
	if len(unbacked) == 0 {
		return integration.Outcomes{}, nil
	}

	outcomes := s.Manager.DispatchUnban(ctx, &integration.UnbanRequest{
		PlayerID: playerID,
		ReportID: reportID,
	}, integration.WithCommunities(unbacked...))

	logOutcomes(outcomes, "unban", playerID, reportID)
	return outcomes, nil
}

func logOutcomes(outcomes integration.Outcomes, op, playerID string, reportID int64) {
	if len(outcomes) == 0 {
		return
	}
	log.Info().
		Str("evt.name", "ban.dispatch."+op).
		Str("player.id", playerID).
		Int64("report.id", reportID).
		Int("succeeded", len(outcomes.Succeeded())).
		Int("failed", len(outcomes.Failed())).
		Int("skipped", len(outcomes.Skipped())).
		Msg("dispatched to integrations")
}
