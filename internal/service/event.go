package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"barricade.gg/backend/internal/pkg/jetstream"
)

// publish sends a domain event. A failure is logged and does not fail the
// operation that raised the event.
func publish(ctx context.Context, p jetstream.Publisher, subject string, data any) {
	if err := p.Publish(ctx, subject, data); err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "event.publish.failed").
			Str("subject", subject).
			Msg("failed to publish event")
	}
}
