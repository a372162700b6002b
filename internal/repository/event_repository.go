package repository

import (
	"context"
	"ctchen222/Battleship/internal/events"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.event")

// EventRepository defines the interface for lifecycle event storage.
type EventRepository interface {
	Publish(ctx context.Context, event events.Event) error
	Recent(ctx context.Context, limit int) ([]events.Event, error)
}

type redisEventRepository struct {
	rdb     *redis.Client
	channel string
	listKey string
	keep    int
}

// NewEventRepository creates a new Redis-based EventRepository.
func NewEventRepository(rdb *redis.Client) EventRepository {
	return &redisEventRepository{
		rdb:     rdb,
		channel: events.EventsChannel,
		listKey: events.RecentEventsKey,
		keep:    events.RecentLimit,
	}
}

// Publish broadcasts the event on the events channel and prepends it to the
// capped recent-events list in one transaction.
func (r *redisEventRepository) Publish(ctx context.Context, event events.Event) error {
	ctx, span := tracer.Start(ctx, "EventRepository.Publish", trace.WithAttributes(
		attribute.String("event.type", event.Type),
	))
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Publish(ctx, r.channel, data)
	pipe.LPush(ctx, r.listKey, data)
	pipe.LTrim(ctx, r.listKey, 0, int64(r.keep-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish %s event to redis: %w", event.Type, err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (r *redisEventRepository) Recent(ctx context.Context, limit int) ([]events.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.Recent")
	defer span.End()

	if limit <= 0 || limit > r.keep {
		limit = r.keep
	}
	raw, err := r.rdb.LRange(ctx, r.listKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent events from redis: %w", err)
	}

	out := make([]events.Event, 0, len(raw))
	for _, item := range raw {
		var ev events.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}
