package integration

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/pkg/bcerr"
	"barricade.gg/backend/internal/pkg/observability"
)

var tracer = otel.Tracer("integration")

const (
	OpBan   = "ban"
	OpUnban = "unban"
)

// BanLedger records the remote handles of applied bans.
type BanLedger interface {
	GetBan(ctx context.Context, playerID string, integrationID int64) (*model.PlayerBan, error)
	CreateBan(ctx context.Context, ban *model.PlayerBan) error
	DeleteBan(ctx context.Context, id int64) error
}

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Outcome is the result of dispatching to a single integration. Err is a
// *DispatchError when Status is OutcomeFailure.
type Outcome struct {
	Key           Key
	IntegrationID int64
	Status        OutcomeStatus
	RemoteID      string
	Note          string
	Err           error
	Duration      time.Duration
}

// Outcomes maps every targeted integration to its outcome.
type Outcomes map[Key]*Outcome

func (o Outcomes) filter(status OutcomeStatus) []*Outcome {
	out := lo.Filter(lo.Values(o), func(oc *Outcome, _ int) bool {
		return oc.Status == status
	})
	sort.Slice(out, func(i, j int) bool { return out[i].IntegrationID < out[j].IntegrationID })
	return out
}

func (o Outcomes) Failed() []*Outcome {
	return o.filter(OutcomeFailure)
}

func (o Outcomes) Succeeded() []*Outcome {
	return o.filter(OutcomeSuccess)
}

func (o Outcomes) Skipped() []*Outcome {
	return o.filter(OutcomeSkipped)
}

type entry struct {
	integration Integration
	healthy     bool
	reason      string
}

// Manager holds the integrations of every community and fans ban decisions
// out to them. Each integration is called concurrently, bounded by its own
// timeout, and its failure never affects the others.
type Manager struct {
	mu      sync.RWMutex
	entries map[int64]map[constant.IntegrationType]*entry

	ledger  BanLedger
	timeout time.Duration
}

func NewManager(conf *appconfig.Config, ledger BanLedger) *Manager {
	return &Manager{
		entries: map[int64]map[constant.IntegrationType]*entry{},
		ledger:  ledger,
		timeout: conf.IntegrationDispatchTimeout,
	}
}

// Add registers i for its community, replacing and closing any prior
// integration of the same type. The new integration starts healthy.
func (m *Manager) Add(i Integration) {
	key := KeyOf(i)

	m.mu.Lock()
	byType, ok := m.entries[key.CommunityID]
	if !ok {
		byType = map[constant.IntegrationType]*entry{}
		m.entries[key.CommunityID] = byType
	}
	old := byType[key.Type]
	byType[key.Type] = &entry{integration: i, healthy: true}
	m.mu.Unlock()

	if old != nil && old.integration != i {
		m.closeIntegration(key, old.integration)
	}
	m.updateGauge()
}

// Remove deregisters and closes the integration of the given type. It reports
// whether one was registered.
func (m *Manager) Remove(communityID int64, typ constant.IntegrationType) bool {
	m.mu.Lock()
	byType := m.entries[communityID]
	old, ok := byType[typ]
	if ok {
		delete(byType, typ)
		if len(byType) == 0 {
			delete(m.entries, communityID)
		}
	}
	m.mu.Unlock()

	if ok {
		m.closeIntegration(Key{CommunityID: communityID, Type: typ}, old.integration)
		m.updateGauge()
	}
	return ok
}

func (m *Manager) Get(communityID int64, typ constant.IntegrationType) (Integration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[communityID][typ]
	if !ok {
		return nil, false
	}
	return e.integration, true
}

// Integrations returns a snapshot of every registered integration, ordered by id.
func (m *Manager) Integrations() []Integration {
	m.mu.RLock()
	out := make([]Integration, 0, len(m.entries))
	for _, byType := range m.entries {
		for _, e := range byType {
			out = append(out, e.integration)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Config().ID < out[j].Config().ID })
	return out
}

// Healthy reports whether the integration is registered and not known to be misconfigured.
func (m *Manager) Healthy(key Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key.CommunityID][key.Type]
	return ok && e.healthy
}

// MarkUnhealthy excludes the integration from dispatch until it is replaced
// through Add.
func (m *Manager) MarkUnhealthy(key Key, reason string) {
	m.markUnhealthy(key, nil, reason)
}

// markUnhealthy only marks the entry if it still holds i, so that a failing
// call of a replaced integration does not taint its successor.
func (m *Manager) markUnhealthy(key Key, i Integration, reason string) {
	m.mu.Lock()
	e, ok := m.entries[key.CommunityID][key.Type]
	if ok && (i == nil || e.integration == i) {
		e.healthy = false
		e.reason = reason
	}
	m.mu.Unlock()

	if ok {
		log.Warn().
			Str("evt.name", "integration.unhealthy").
			Int64("community.id", key.CommunityID).
			Str("integration.type", string(key.Type)).
			Str("reason", reason).
			Msg("integration marked unhealthy, skipping it until reconfigured")
		m.updateGauge()
	}
}

// Close closes and deregisters every integration.
func (m *Manager) Close() error {
	m.mu.Lock()
	entries := m.entries
	m.entries = map[int64]map[constant.IntegrationType]*entry{}
	m.mu.Unlock()

	for communityID, byType := range entries {
		for typ, e := range byType {
			m.closeIntegration(Key{CommunityID: communityID, Type: typ}, e.integration)
		}
	}
	m.updateGauge()
	return nil
}

func (m *Manager) closeIntegration(key Key, i Integration) {
	if err := i.Close(); err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "integration.close.failed").
			Int64("community.id", key.CommunityID).
			Str("integration.type", string(key.Type)).
			Msg("failed to close integration")
	}
}

func (m *Manager) updateGauge() {
	counts := map[[2]string]float64{}
	m.mu.RLock()
	for _, byType := range m.entries {
		for typ, e := range byType {
			counts[[2]string{string(typ), strconv.FormatBool(e.healthy)}]++
		}
	}
	m.mu.RUnlock()

	observability.IntegrationsLoaded.Reset()
	for k, v := range counts {
		observability.IntegrationsLoaded.WithLabelValues(k[0], k[1]).Set(v)
	}
}

type dispatchOptions struct {
	communities map[int64]struct{}
}

type DispatchOption func(*dispatchOptions)

// WithCommunities restricts a dispatch to the integrations of the given communities.
func WithCommunities(ids ...int64) DispatchOption {
	return func(o *dispatchOptions) {
		if o.communities == nil {
			o.communities = map[int64]struct{}{}
		}
		for _, id := range ids {
			o.communities[id] = struct{}{}
		}
	}
}

// targets returns the enabled integrations in scope. Unhealthy ones are
// returned as skipped outcomes.
func (m *Manager) targets(o *dispatchOptions) ([]Integration, []*Outcome) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		targets []Integration
		skipped []*Outcome
	)
	for communityID, byType := range m.entries {
		if o.communities != nil {
			if _, ok := o.communities[communityID]; !ok {
				continue
			}
		}
		for typ, e := range byType {
			cfg := e.integration.Config()
			if !cfg.Enabled {
				continue
			}
			if !e.healthy {
				skipped = append(skipped, &Outcome{
					Key:           Key{CommunityID: communityID, Type: typ},
					IntegrationID: cfg.ID,
					Status:        OutcomeSkipped,
					Note:          "integration is unhealthy: " + e.reason,
				})
				continue
			}
			targets = append(targets, e.integration)
		}
	}
	return targets, skipped
}

// DispatchBan applies the ban through every enabled integration in scope,
// which defaults to all communities. Integrations already holding a ban of
// the player are skipped. It returns once every call has completed or timed out.
func (m *Manager) DispatchBan(ctx context.Context, req *BanRequest, opts ...DispatchOption) Outcomes {
	return m.dispatch(ctx, OpBan, req.PlayerID, opts, func(ctx context.Context, i Integration) *Outcome {
		return m.ban(ctx, i, req)
	})
}

// DispatchUnban reverses the bans recorded for the player through every
// enabled integration in scope. Integrations without a recorded ban are skipped.
func (m *Manager) DispatchUnban(ctx context.Context, req *UnbanRequest, opts ...DispatchOption) Outcomes {
	return m.dispatch(ctx, OpUnban, req.PlayerID, opts, func(ctx context.Context, i Integration) *Outcome {
		return m.unban(ctx, i, req)
	})
}

func (m *Manager) dispatch(ctx context.Context, op, playerID string, opts []DispatchOption, call func(context.Context, Integration) *Outcome) Outcomes {
	o := &dispatchOptions{}
	for _, opt := range opts {
		opt(o)
	}

	ctx, span := tracer.Start(ctx, "integration.dispatch."+op)
	defer span.End()

	targets, skipped := m.targets(o)
	span.SetAttributes(attribute.Int("integration.targets", len(targets)))

	results := make([]*Outcome, len(targets))
	var g errgroup.Group
	for idx, i := range targets {
		idx, i := idx, i
		g.Go(func() error {
			results[idx] = m.run(ctx, op, playerID, i, call)
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make(Outcomes, len(targets)+len(skipped))
	for _, oc := range skipped {
		observability.IntegrationDispatchOutcome.
			WithLabelValues(string(oc.Key.Type), op, string(oc.Status)).
			Inc()
		outcomes[oc.Key] = oc
	}
	for _, oc := range results {
		outcomes[oc.Key] = oc
	}
	return outcomes
}

// run performs a single call bounded by the dispatch timeout. Panics and
// timeouts become failure outcomes.
func (m *Manager) run(ctx context.Context, op, playerID string, i Integration, call func(context.Context, Integration) *Outcome) *Outcome {
	cfg := i.Config()
	key := Key{CommunityID: cfg.CommunityID, Type: cfg.IntegrationType}
	start := time.Now()

	ctx, span := tracer.Start(ctx, "integration."+string(key.Type)+"."+op)
	defer span.End()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	ch := make(chan *Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("evt.name", "integration.panic").
					Int64("community.id", key.CommunityID).
					Str("integration.type", string(key.Type)).
					Str("stack", string(debug.Stack())).
					Msgf("integration panicked: %v", r)
				ch <- &Outcome{Status: OutcomeFailure, Err: fmt.Errorf("integration panicked: %v", r)}
			}
		}()
		ch <- call(ctx, i)
	}()

	var oc *Outcome
	select {
	case oc = <-ch:
	case <-ctx.Done():
		oc = &Outcome{Status: OutcomeFailure, Err: errors.Wrap(ctx.Err(), "integration call did not complete in time")}
	}

	oc.Key = key
	oc.IntegrationID = cfg.ID
	oc.Duration = time.Since(start)
	if oc.Status == OutcomeFailure {
		oc.Err = &DispatchError{Key: key, IntegrationID: cfg.ID, Op: op, PlayerID: playerID, Err: oc.Err}
		span.RecordError(oc.Err)
		m.reportFailure(i, oc)
	}

	observability.IntegrationDispatchDuration.
		WithLabelValues(string(key.Type), op).
		Observe(oc.Duration.Seconds())
	observability.IntegrationDispatchOutcome.
		WithLabelValues(string(key.Type), op, string(oc.Status)).
		Inc()

	return oc
}

func (m *Manager) reportFailure(i Integration, oc *Outcome) {
	log.Error().
		Err(oc.Err).
		Str("evt.name", "integration.dispatch.failed").
		Int64("community.id", oc.Key.CommunityID).
		Int64("integration.id", oc.IntegrationID).
		Str("integration.type", string(oc.Key.Type)).
		Dur("duration", oc.Duration).
		Msg("integration dispatch failed")

	var ce *ConfigError
	if errors.As(oc.Err, &ce) {
		m.markUnhealthy(oc.Key, i, ce.Reason)
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("community.id", strconv.FormatInt(oc.Key.CommunityID, 10))
		scope.SetTag("integration.type", string(oc.Key.Type))
		sentry.CaptureException(oc.Err)
	})
}

func (m *Manager) ban(ctx context.Context, i Integration, req *BanRequest) *Outcome {
	cfg := i.Config()
	l := logFor(cfg)

	existing, err := m.ledger.GetBan(ctx, req.PlayerID, cfg.ID)
	if err == nil {
		return &Outcome{Status: OutcomeSkipped, RemoteID: existing.RemoteID, Note: "player is already banned"}
	} else if !errors.Is(err, bcerr.ErrNotFound) {
		return &Outcome{Status: OutcomeFailure, Err: errors.Wrap(err, "look up existing ban")}
	}

	remoteID, err := i.ApplyBan(ctx, req)
	if err != nil {
		return &Outcome{Status: OutcomeFailure, Err: err}
	}
	if ctx.Err() != nil {
		// the failure was already reported; sync expires the unrecorded remote ban
		l.Warn().
			Str("evt.name", "integration.ban.late").
			Str("player.id", req.PlayerID).
			Str("remote.id", remoteID).
			Msg("ban applied after the dispatch deadline, not recording it")
		return &Outcome{Status: OutcomeFailure, RemoteID: remoteID, Err: errors.Wrap(ctx.Err(), "ban applied after deadline")}
	}

	err = m.ledger.CreateBan(ctx, &model.PlayerBan{
		PlayerID:      req.PlayerID,
		IntegrationID: cfg.ID,
		RemoteID:      remoteID,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return &Outcome{Status: OutcomeFailure, RemoteID: remoteID, Err: errors.Wrapf(err, "ban %s applied remotely but could not be recorded", remoteID)}
	}

	l.Info().
		Str("evt.name", "integration.ban.applied").
		Str("player.id", req.PlayerID).
		Str("remote.id", remoteID).
		Msg("ban applied")
	return &Outcome{Status: OutcomeSuccess, RemoteID: remoteID}
}

func (m *Manager) unban(ctx context.Context, i Integration, req *UnbanRequest) *Outcome {
	cfg := i.Config()
	l := logFor(cfg)

	ban, err := m.ledger.GetBan(ctx, req.PlayerID, cfg.ID)
	if errors.Is(err, bcerr.ErrNotFound) {
		return &Outcome{Status: OutcomeSkipped, Note: "no ban recorded for player"}
	} else if err != nil {
		return &Outcome{Status: OutcomeFailure, Err: errors.Wrap(err, "look up ban")}
	}

	r := *req
	r.RemoteID = ban.RemoteID
	note := ""
	if err := i.ReverseBan(ctx, &r); errors.Is(err, ErrRemoteBanNotFound) {
		note = "remote ban was already gone"
		l.Warn().
			Str("evt.name", "integration.unban.missing").
			Str("player.id", req.PlayerID).
			Str("remote.id", ban.RemoteID).
			Msg("remote ban not found, dropping local record")
	} else if err != nil {
		return &Outcome{Status: OutcomeFailure, RemoteID: ban.RemoteID, Err: err}
	}

	if err := m.ledger.DeleteBan(ctx, ban.ID); err != nil {
		return &Outcome{Status: OutcomeFailure, RemoteID: ban.RemoteID, Err: errors.Wrap(err, "ban reversed remotely but record could not be removed")}
	}

	l.Info().
		Str("evt.name", "integration.ban.reversed").
		Str("player.id", req.PlayerID).
		Str("remote.id", ban.RemoteID).
		Msg("ban reversed")
	return &Outcome{Status: OutcomeSuccess, RemoteID: ban.RemoteID, Note: note}
}

func logFor(cfg model.Integration) zerolog.Logger {
	return log.With().
		Int64("community.id", cfg.CommunityID).
		Int64("integration.id", cfg.ID).
		Str("integration.type", string(cfg.IntegrationType)).
		Logger()
}
