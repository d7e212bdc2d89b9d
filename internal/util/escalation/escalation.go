// Package escalation decides whether a report is corroborated enough to be
// forwarded to the central support review queue.
package escalation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/observability"
)

var tracer = otel.Tracer("escalation")

// Thresholds configure the decision rule. A zero Cutoff disables the cutoff.
type Thresholds struct {
	ReasonMask         constant.ReportReasonFlag
	MinResponses       int
	MaxRejects         int
	Cutoff             time.Time
	ConfirmationChance float64
}

func ThresholdsFromConfig(conf *appconfig.Config) Thresholds {
	return Thresholds{
		ReasonMask:         constant.ReportReasonFlag(conf.EscalationReasonMask),
		MinResponses:       conf.EscalationMinResponses,
		MaxRejects:         conf.EscalationMaxRejects,
		Cutoff:             conf.EscalationCutoffDate.Time,
		ConfirmationChance: conf.EscalationConfirmationChance,
	}
}

// Input is everything a criterion may look at.
type Input struct {
	Report  *model.Report
	Summary *model.ReportSummary
}

// Result is the verdict of a single criterion.
type Result struct {
	Criterion string `json:"criterion"`
	Met       bool   `json:"met"`
	Detail    string `json:"detail"`
}

// Decision is the output of the engine. Qualifies holds only when every
// criterion is met.
type Decision struct {
	ReportID  int64     `json:"reportId"`
	Qualifies bool      `json:"qualifies"`
	Results   []*Result `json:"results"`
}

// Met returns the names of the criteria that were met.
func (d *Decision) Met() []string {
	names := make([]string, 0, len(d.Results))
	for _, r := range d.Results {
		if r.Met {
			names = append(names, r.Criterion)
		}
	}
	return names
}

type Criterion interface {
	Name() string
	Check(ctx context.Context, in *Input) *Result
}

type Engine struct {
	thresholds Thresholds
	criteria   []Criterion
}

func New(t Thresholds) *Engine {
	return &Engine{
		thresholds: t,
		criteria: []Criterion{
			&ReasonCriterion{Mask: t.ReasonMask},
			&CutoffCriterion{Cutoff: t.Cutoff},
			&MinResponsesCriterion{Min: t.MinResponses},
			&MaxRejectsCriterion{Max: t.MaxRejects},
		},
	}
}

func NewFromConfig(conf *appconfig.Config) *Engine {
	return New(ThresholdsFromConfig(conf))
}

func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate runs every criterion against in. All criteria are evaluated even
// after one fails so that the decision lists every contributing reason.
func (e *Engine) Evaluate(ctx context.Context, in *Input) *Decision {
	d := &Decision{
		ReportID:  in.Report.ID,
		Qualifies: true,
		Results:   make([]*Result, 0, len(e.criteria)),
	}

	for _, c := range e.criteria {
		start := time.Now()
		name := c.Name()

		ctx, span := tracer.Start(ctx, "escalation.criterion."+name)
		r := c.Check(ctx, in)
		span.End()

		observability.EscalationCriterionDuration.
			WithLabelValues(name).
			Observe(time.Since(start).Seconds())

		r.Criterion = name
		d.Results = append(d.Results, r)
		if !r.Met {
			d.Qualifies = false
		}
	}

	observability.EscalationDecisions.
		WithLabelValues(boolLabel(d.Qualifies)).
		Inc()

	return d
}

// NeedsConfirmation reports whether the acting admin should be asked to
// confirm an action that would forward the report. draw is a uniformly
// distributed value in [0, 1) supplied by the caller.
func (e *Engine) NeedsConfirmation(d *Decision, draw float64) bool {
	return d != nil && d.Qualifies && draw < e.thresholds.ConfirmationChance
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
