package escalation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/util/respstats"
)

var created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func reportWith(reasons constant.ReportReasonFlag, bans, rejects int) *Input {
	report := &model.Report{
		ID:             1,
		ReasonsBitflag: reasons,
		CreatedAt:      created,
		Players:        []*model.PlayerReport{{ID: 1, ReportID: 1}, {ID: 2, ReportID: 1}},
	}

	var responses []*model.PlayerReportResponse
	community := int64(100)
	for i := 0; i < bans; i++ {
		community++
		responses = append(responses, &model.PlayerReportResponse{
			PlayerReportID: int64(i%2 + 1),
			CommunityID:    community,
			Banned:         true,
		})
	}
	for i := 0; i < rejects; i++ {
		community++
		responses = append(responses, &model.PlayerReportResponse{
			PlayerReportID: 1,
			CommunityID:    community,
			RejectReason:   null.StringFrom(string(constant.RejectReasonInsufficient)),
		})
	}

	return &Input{Report: report, Summary: respstats.ForReport(report, responses)}
}

func defaultThresholds() Thresholds {
	return Thresholds{
		ReasonMask:   constant.AllReasons,
		MinResponses: 20,
		MaxRejects:   1,
	}
}

func TestEvaluateResponseThresholds(t *testing.T) {
	e := New(defaultThresholds())
	ctx := context.Background()

	assert.False(t, e.Evaluate(ctx, reportWith(constant.ReasonHacking, 19, 0)).Qualifies, "19 responses")
	assert.True(t, e.Evaluate(ctx, reportWith(constant.ReasonHacking, 20, 0)).Qualifies, "20 responses, 0 rejects")
	assert.True(t, e.Evaluate(ctx, reportWith(constant.ReasonHacking, 19, 1)).Qualifies, "20 responses, 1 reject")
	assert.False(t, e.Evaluate(ctx, reportWith(constant.ReasonHacking, 18, 2)).Qualifies, "20 responses, 2 rejects")
}

func TestEvaluateReasonMask(t *testing.T) {
	th := defaultThresholds()
	th.ReasonMask = constant.ReasonHacking
	e := New(th)

	d := e.Evaluate(context.Background(), reportWith(constant.ReasonToxicityHarassment, 25, 0))
	assert.False(t, d.Qualifies)
	assert.NotContains(t, d.Met(), "reason")
	assert.Contains(t, d.Met(), "min_responses")

	d = e.Evaluate(context.Background(), reportWith(constant.ReasonToxicityHarassment|constant.ReasonHacking, 25, 0))
	assert.True(t, d.Qualifies)
}

func TestEvaluateCutoff(t *testing.T) {
	th := defaultThresholds()

	th.Cutoff = created.Add(time.Second)
	assert.False(t, New(th).Evaluate(context.Background(), reportWith(constant.ReasonHacking, 20, 0)).Qualifies)

	th.Cutoff = created
	assert.True(t, New(th).Evaluate(context.Background(), reportWith(constant.ReasonHacking, 20, 0)).Qualifies, "cutoff is inclusive")
}

func TestEvaluateZeroResponses(t *testing.T) {
	assert.False(t, New(defaultThresholds()).Evaluate(context.Background(), reportWith(constant.ReasonHacking, 0, 0)).Qualifies)

	th := defaultThresholds()
	th.MinResponses = 0
	assert.True(t, New(th).Evaluate(context.Background(), reportWith(constant.ReasonHacking, 0, 0)).Qualifies)
}

func TestEvaluateListsEveryCriterion(t *testing.T) {
	d := New(defaultThresholds()).Evaluate(context.Background(), reportWith(constant.ReasonHacking, 3, 4))

	assert.False(t, d.Qualifies)
	assert.Len(t, d.Results, 4)
	assert.ElementsMatch(t, []string{"reason", "cutoff"}, d.Met())
}

func TestNeedsConfirmation(t *testing.T) {
	th := defaultThresholds()
	th.ConfirmationChance = 0.25
	e := New(th)

	qualifying := e.Evaluate(context.Background(), reportWith(constant.ReasonHacking, 20, 0))
	failing := e.Evaluate(context.Background(), reportWith(constant.ReasonHacking, 1, 0))

	assert.True(t, e.NeedsConfirmation(qualifying, 0.1))
	assert.False(t, e.NeedsConfirmation(qualifying, 0.25))
	assert.False(t, e.NeedsConfirmation(failing, 0.1))
	assert.False(t, e.NeedsConfirmation(nil, 0))

	assert.False(t, New(defaultThresholds()).NeedsConfirmation(qualifying, 0), "zero chance never prompts")
}
