package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/inkpress/blogapi/internal/mq"
	"github.com/inkpress/blogapi/types"
	"github.com/rs/zerolog"
)

// EventPublisher delivers domain events to a message bus.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// eventEmitter publishes events best-effort: a bus failure is logged and
// never fails the request that produced the event.
type eventEmitter struct {
	publisher EventPublisher
	channel   string
	logger    zerolog.Logger
}

func (e eventEmitter) emit(ctx context.Context, event types.Event) {
	if e.publisher == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		e.logger.Error().Err(err).Str("event", event.Type).Msg("encode event")
		return
	}
	id, err := e.publisher.Publish(ctx, e.channel, data, map[string]string{mq.AttrType: event.Type})
	if err != nil {
		e.logger.Warn().Err(err).Str("event", event.Type).Str("channel", e.channel).Msg("publish event")
		return
	}
	e.logger.Debug().Str("event", event.Type).Str("message_id", id).Msg("event published")
}
