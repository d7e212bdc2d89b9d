package model

import "barricade.gg/backend/internal/constant"

// ResponseStats is the tally of community responses to a single PlayerReport.
// It is derived from stored responses and never persisted.
type ResponseStats struct {
	PlayerReportID int64                         `json:"playerReportId"`
	NumBanned      int                           `json:"numBanned"`
	NumRejected    int                           `json:"numRejected"`
	NumPending     int                           `json:"numPending"`
	RejectReasons  map[constant.RejectReason]int `json:"rejectReasons"`
}

func (s *ResponseStats) NumResponses() int {
	return s.NumBanned + s.NumRejected
}

// ReportSummary classifies every player of a report by its strongest verdict:
// a player with at least one ban counts as banned, otherwise one with at least
// one rejection counts as rejected, otherwise it is pending.
type ReportSummary struct {
	ReportID    int64                    `json:"reportId"`
	NumPlayers  int                      `json:"numPlayers"`
	NumBanned   int                      `json:"numBanned"`
	NumRejected int                      `json:"numRejected"`
	NumPending  int                      `json:"numPending"`
	Players     map[int64]*ResponseStats `json:"players"`
}

// TotalResponses is the number of ban and reject responses across all players.
func (s *ReportSummary) TotalResponses() int {
	total := 0
	for _, p := range s.Players {
		total += p.NumResponses()
	}
	return total
}

// TotalRejects is the number of reject responses across all players.
func (s *ReportSummary) TotalRejects() int {
	total := 0
	for _, p := range s.Players {
		total += p.NumRejected
	}
	return total
}
