package appconfig

import (
	"time"

	"barricade.gg/backend/internal/app/appcontext"
)

type ConfigSpec struct {
	// DevOpsAddress is the listen address of the devops server exposing /health and /metrics.
	// Leaving this empty will disable devops server.
	// This address is only intended to be used in intra-cluster devops requests, and is not intended to be exposed to the public.
	DevOpsAddress string `split_words:"true" default:"localhost:9011"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// DevMode to indicate development mode. When true, the program would spin up utilities for debugging and
	// log database queries.
	DevMode bool `split_words:"true"`

	// infrastructure components connection instructions

	// PostgresDSN is the data source name for the PostgreSQL database. See
	// https://bun.uptrace.dev/postgres/#pgdriver for more details on how to construct a PostgreSQL DSN.
	PostgresDSN string `required:"true" split_words:"true"`

	PostgresMaxOpenConns    int           `split_words:"true" default:"10"`
	PostgresMaxIdleConns    int           `split_words:"true" default:"2"`
	PostgresConnMaxLifeTime time.Duration `split_words:"true" default:"5m"`
	PostgresConnMaxIdleTime time.Duration `split_words:"true" default:"5m"`

	// PostgresConnectAttempts is the number of attempts made to reach the database on startup.
	PostgresConnectAttempts uint `split_words:"true" default:"5"`

	BunDebugVerbose bool `split_words:"true"`

	// NatsURL is the URL of the NATS server. See https://pkg.go.dev/github.com/nats-io/nats.go#Connect
	// for more information on how to construct a NATS URL.
	NatsURL string `required:"true" split_words:"true" default:"nats://127.0.0.1:4222"`

	// NatsEnabled enables publishing domain events to NATS JetStream. When disabled, events are only logged.
	NatsEnabled bool `split_words:"true" default:"true"`

	// RedisURL is the URL of the Redis server. See https://pkg.go.dev/github.com/redis/go-redis/v9#ParseURL
	// for more information on how to construct a Redis URL.
	RedisURL string `required:"true" split_words:"true" default:"redis://127.0.0.1:6379/0"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// HTTPServerShutdownTimeout is the timeout for the devops server to shut down gracefully.
	HTTPServerShutdownTimeout time.Duration `required:"true" split_words:"true" default:"10s"`

	// business logic configurations

	// ReportTokenTTL is how long a report token may be used to submit a report after being issued.
	ReportTokenTTL time.Duration `split_words:"true" default:"1h"`

	// MaxAdminLimit is the number of admins a community may have besides its owner.
	MaxAdminLimit int `split_words:"true" default:"3"`

	// MaxIntegrationLimit is the number of integrations a community may configure.
	MaxIntegrationLimit int `split_words:"true" default:"3"`

	// EscalationReasonMask is the report reason bitflag eligible for forwarding to central support.
	// Accepts a number or reason names.
	EscalationReasonMask ReasonMask `split_words:"true" default:"Hacking"`

	// EscalationMinResponses is the minimum number of ban or reject responses a report needs to be forwarded.
	EscalationMinResponses int `split_words:"true" default:"20"`

	// EscalationMaxRejects is the maximum number of reject responses a forwarded report may have.
	EscalationMaxRejects int `split_words:"true" default:"1"`

	// EscalationCutoffDate excludes reports created before it from forwarding. RFC 3339, optional.
	EscalationCutoffDate CutoffDate `split_words:"true"`

	// EscalationConfirmationChance is the probability in [0, 1] that an admin is asked to confirm a
	// banning action that would forward a report.
	EscalationConfirmationChance float64 `split_words:"true" default:"0.0"`

	// IntegrationDispatchTimeout bounds each single integration ban or unban call.
	IntegrationDispatchTimeout time.Duration `split_words:"true" default:"15s"`

	// IntegrationValidateTimeout bounds the live check run before an integration is enabled.
	IntegrationValidateTimeout time.Duration `split_words:"true" default:"30s"`

	// BattleMetricsAPIURL is the base URL of the BattleMetrics API.
	BattleMetricsAPIURL string `split_words:"true" default:"https://api.battlemetrics.com"`

	// PlayerReportedCacheTTL is how long the result of a "is this player reported" lookup is cached.
	PlayerReportedCacheTTL time.Duration `split_words:"true" default:"10m"`

	// WorkerEnabled enables the integration synchronization worker.
	WorkerEnabled bool `split_words:"true" default:"true"`

	// WorkerSyncInterval describes the interval in-between integration synchronizations.
	WorkerSyncInterval time.Duration `split_words:"true" default:"1h"`

	// WorkerSyncTimeout describes the timeout for a single synchronization run.
	WorkerSyncTimeout time.Duration `split_words:"true" default:"10m"`
}

type Config struct {
	// ConfigSpec is the configuration specification.
	ConfigSpec

	// AppContext is the application context.
	AppContext appcontext.Ctx
}
