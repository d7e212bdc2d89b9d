package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "barricade"
)

var (
	IntegrationDispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "integration", "dispatch_duration_seconds"),
		Help:    "Duration of a single integration ban or unban call in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"type", "op"})
	IntegrationDispatchOutcome = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "integration", "dispatch_outcome_total"),
		Help: "Outcomes of integration ban and unban calls",
	}, []string{"type", "op", "status"})
	IntegrationsLoaded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "integration", "loaded"),
		Help: "Number of integrations currently registered, by health",
	}, []string{"type", "healthy"})
	EscalationCriterionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "escalation", "criterion_duration_seconds"),
		Help:    "Duration of escalation criterion evaluation in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 10),
	}, []string{"criterion"})
	EscalationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "escalation", "decisions_total"),
		Help: "Escalation decisions by result",
	}, []string{"qualifies"})
	ReportTokenConsumption = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "report", "token_consumption_total"),
		Help: "Report token consumption attempts by result",
	}, []string{"result"})
	WorkerSyncDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "worker", "sync_duration_seconds"),
		Help: "Duration of last integration synchronization in seconds",
	}, []string{"type"})
)
