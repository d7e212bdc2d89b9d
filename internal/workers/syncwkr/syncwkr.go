// Package syncwkr periodically reconciles the ban records with the bans held
// by the integrations.
package syncwkr

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"barricade.gg/backend/internal/app/appconfig"
	"barricade.gg/backend/internal/integration"
)

const mutexName = "mutex:syncwkr"

// Syncer is satisfied by *service.Sync.
type Syncer interface {
	SynchronizeAll(ctx context.Context) map[integration.Key]error
}

// Locker is satisfied by *redsync.Mutex.
type Locker interface {
	LockContext(ctx context.Context) error
	UnlockContext(ctx context.Context) (bool, error)
}

type Worker struct {
	// count counts runs the worker has completed so far
	count int

	// interval describes the interval in-between synchronization runs
	interval time.Duration

	// timeout bounds a single synchronization run
	timeout time.Duration

	lock   Locker
	syncer Syncer
}

func New(interval, timeout time.Duration, lock Locker, syncer Syncer) *Worker {
	return &Worker{
		interval: interval,
		timeout:  timeout,
		lock:     lock,
		syncer:   syncer,
	}
}

// Start runs the worker for the lifetime of the app when enabled.
func Start(conf *appconfig.Config, lc fx.Lifecycle, rs *redsync.Redsync, syncer Syncer) {
	if !conf.WorkerEnabled {
		log.Info().
			Str("evt.name", "worker.sync.disabled").
			Msg("sync worker is disabled")
		return
	}

	// the lock outlives a run so that a crashed holder releases it eventually
	mutex := rs.NewMutex(mutexName, redsync.WithExpiry(conf.WorkerSyncTimeout+time.Minute), redsync.WithTries(1))
	w := New(conf.WorkerSyncInterval, conf.WorkerSyncTimeout, mutex, syncer)

	var cancel context.CancelFunc
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				w.Loop(ctx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// Loop runs synchronizations every interval until ctx is done.
func (w *Worker) Loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Run(ctx); err != nil {
				log.Error().
					Err(err).
					Str("evt.name", "worker.sync.error").
					Msg("sync worker run failed")
			}
		}
	}
}

// Run performs one synchronization if no other instance holds the lock. It
// returns the first integration failure; the others are logged by the syncer.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.lock.LockContext(ctx); err != nil {
		log.Debug().
			Err(err).
			Str("evt.name", "worker.sync.skipped").
			Msg("another instance is synchronizing")
		return nil
	}
	defer func() {
		if _, err := w.lock.UnlockContext(context.Background()); err != nil {
			log.Warn().
				Err(err).
				Str("evt.name", "worker.sync.unlock").
				Msg("failed to release sync lock")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	log.Info().
		Str("evt.name", "worker.sync.started").
		Int("count", w.count).
		Msg("sync worker run started")

	errs := w.syncer.SynchronizeAll(ctx)
	w.count++

	log.Info().
		Str("evt.name", "worker.sync.finished").
		Int("count", w.count).
		Int("failed", len(errs)).
		Msg("sync worker run finished")

	for key, err := range errs {
		return errors.Wrapf(err, "synchronize %s integration of community %d", key.Type, key.CommunityID)
	}
	return nil
}

func (w *Worker) Count() int {
	return w.count
}
