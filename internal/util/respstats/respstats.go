// Package respstats tallies community responses into per-player and
// per-report statistics. Everything here is a pure function of its input.
package respstats

import (
	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
)

func newStats(prID int64) *model.ResponseStats {
	return &model.ResponseStats{
		PlayerReportID: prID,
		RejectReasons:  make(map[constant.RejectReason]int, len(constant.RejectReasons)),
	}
}

// Compute tallies responses for every PlayerReport in prIDs in a single pass.
// Every id in prIDs has an entry in the result, zeroed when it has no
// responses. Responses for ids not listed in prIDs are ignored. The result
// does not depend on the order of responses.
func Compute(prIDs []int64, responses []*model.PlayerReportResponse) map[int64]*model.ResponseStats {
	stats := make(map[int64]*model.ResponseStats, len(prIDs))
	for _, id := range prIDs {
		stats[id] = newStats(id)
	}

	for _, resp := range responses {
		s, ok := stats[resp.PlayerReportID]
		if !ok {
			continue
		}
		switch {
		case resp.Banned:
			s.NumBanned++
		case resp.Rejected():
			s.NumRejected++
			s.RejectReasons[constant.RejectReason(resp.RejectReason.String)]++
		default:
			s.NumPending++
		}
	}

	return stats
}

// Summarize classifies every player of report using stats. Players missing
// from stats are counted as pending.
func Summarize(report *model.Report, stats map[int64]*model.ResponseStats) *model.ReportSummary {
	summary := &model.ReportSummary{
		ReportID:   report.ID,
		NumPlayers: len(report.Players),
		Players:    make(map[int64]*model.ResponseStats, len(report.Players)),
	}

	for _, pr := range report.Players {
		s, ok := stats[pr.ID]
		if !ok {
			s = newStats(pr.ID)
		}
		summary.Players[pr.ID] = s

		switch {
		case s.NumBanned > 0:
			summary.NumBanned++
		case s.NumRejected > 0:
			summary.NumRejected++
		default:
			summary.NumPending++
		}
	}

	return summary
}

// ForReport computes the summary of report from the responses to its players.
func ForReport(report *model.Report, responses []*model.PlayerReportResponse) *model.ReportSummary {
	ids := make([]int64, 0, len(report.Players))
	for _, pr := range report.Players {
		ids = append(ids, pr.ID)
	}
	return Summarize(report, Compute(ids, responses))
}
