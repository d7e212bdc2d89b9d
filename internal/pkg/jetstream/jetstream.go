// Package jetstream publishes domain events to the NATS JetStream event stream.
package jetstream

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"barricade.gg/backend/internal/model/types"
)

// Publisher publishes domain events. Publishing is best effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// JetStream publishes events as JSON envelopes.
type JetStream struct {
	js nats.JetStreamContext
}

func NewJetStream(js nats.JetStreamContext) *JetStream {
	return &JetStream{js: js}
}

func (p *JetStream) Publish(ctx context.Context, subject string, data any) error {
	b, err := json.Marshal(&types.Event{
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return err
	}

	ack, err := p.js.Publish(subject, b, nats.Context(ctx), nats.MsgId(ulid.Make().String()))
	if err != nil {
		return err
	}
	if l := log.Trace(); l.Enabled() {
		l.Str("evt.name", "jetstream.published").
			Str("subject", subject).
			Uint64("stream.seq", ack.Sequence).
			Msg("event published")
	}
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []*types.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, subject string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, &types.Event{Subject: subject, OccurredAt: time.Now().UTC(), Data: data})
	return nil
}

// Events returns the events published so far.
func (r *Recorder) Events() []*types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*types.Event(nil), r.events...)
}

// Subjects returns the subjects of the events published so far, in order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	subjects := make([]string, len(r.events))
	for i, e := range r.events {
		subjects[i] = e.Subject
	}
	return subjects
}

// Logged only logs events. It stands in for JetStream when NATS is disabled.
type Logged struct{}

func (Logged) Publish(_ context.Context, subject string, data any) error {
	log.Debug().
		Str("evt.name", "jetstream.skipped").
		Str("subject", subject).
		Interface("data", data).
		Msg("nats disabled, event not published")
	return nil
}
