package service

import (
	"context"

	"github.com/samber/lo"

	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/repo"
	"barricade.gg/backend/internal/util/escalation"
	"barricade.gg/backend/internal/util/respstats"
)

type Escalation struct {
	Engine       *escalation.Engine
	ReportRepo   *repo.Report
	ResponseRepo *repo.PlayerReportResponse
}

func NewEscalation(engine *escalation.Engine, reportRepo *repo.Report, responseRepo *repo.PlayerReportResponse) *Escalation {
	return &Escalation{
		Engine:       engine,
		ReportRepo:   reportRepo,
		ResponseRepo: responseRepo,
	}
}

// Summarize aggregates the stored responses to every player of the report.
func (s *Escalation) Summarize(ctx context.Context, report *model.Report) (*model.ReportSummary, error) {
	prIDs := lo.Map(report.Players, func(pr *model.PlayerReport, _ int) int64 { return pr.ID })
	responses, err := s.ResponseRepo.GetResponsesByPlayerReportIDs(ctx, prIDs)
	if err != nil {
		return nil, err
	}
	return respstats.ForReport(report, responses), nil
}

// Evaluate decides whether the report qualifies for forwarding to central
// support, based on the responses stored so far.
func (s *Escalation) Evaluate(ctx context.Context, reportID int64) (*escalation.Decision, error) {
	report, err := s.ReportRepo.GetReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summarize(ctx, report)
	if err != nil {
		return nil, err
	}
	return s.Engine.Evaluate(ctx, &escalation.Input{Report: report, Summary: summary}), nil
}

// NeedsConfirmation reports whether the acting admin should confirm an action
// that forwards the report. draw must be uniformly distributed in [0, 1).
func (s *Escalation) NeedsConfirmation(d *escalation.Decision, draw float64) bool {
	return s.Engine.NeedsConfirmation(d, draw)
}
