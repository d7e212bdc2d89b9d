package escalation

import (
	"context"
	"fmt"
	"time"

	"barricade.gg/backend/internal/constant"
)

type ReasonCriterion struct {
	Mask constant.ReportReasonFlag
}

func (c *ReasonCriterion) Name() string {
	return "reason"
}

func (c *ReasonCriterion) Check(ctx context.Context, in *Input) *Result {
	got := in.Report.ReasonsBitflag
	return &Result{
		Met:    got.Intersects(c.Mask),
		Detail: fmt.Sprintf("reasons %#x against mask %#x", uint32(got), uint32(c.Mask)),
	}
}

// CutoffCriterion excludes reports created before Cutoff. A zero Cutoff
// always passes.
type CutoffCriterion struct {
	Cutoff time.Time
}

func (c *CutoffCriterion) Name() string {
	return "cutoff"
}

func (c *CutoffCriterion) Check(ctx context.Context, in *Input) *Result {
	if c.Cutoff.IsZero() {
		return &Result{Met: true, Detail: "no cutoff configured"}
	}
	return &Result{
		Met:    !in.Report.CreatedAt.Before(c.Cutoff),
		Detail: fmt.Sprintf("created %s, cutoff %s", in.Report.CreatedAt.Format(time.RFC3339), c.Cutoff.Format(time.RFC3339)),
	}
}

// MinResponsesCriterion requires at least Min ban or reject responses across
// all players of the report.
type MinResponsesCriterion struct {
	Min int
}

func (c *MinResponsesCriterion) Name() string {
	return "min_responses"
}

func (c *MinResponsesCriterion) Check(ctx context.Context, in *Input) *Result {
	total := in.Summary.TotalResponses()
	return &Result{
		Met:    total >= c.Min,
		Detail: fmt.Sprintf("%d of %d required responses", total, c.Min),
	}
}

// MaxRejectsCriterion tolerates at most Max reject responses across all
// players of the report.
type MaxRejectsCriterion struct {
	Max int
}

func (c *MaxRejectsCriterion) Name() string {
	return "max_rejects"
}

func (c *MaxRejectsCriterion) Check(ctx context.Context, in *Input) *Result {
	rejects := in.Summary.TotalRejects()
	return &Result{
		Met:    rejects <= c.Max,
		Detail: fmt.Sprintf("%d rejects, %d allowed", rejects, c.Max),
	}
}
