package hub

import (
	"context"
	"ctchen222/Battleship/internal/events"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Publish queues event for the consumers. It never blocks: when the queue
// is full the event is dropped.
func (h *Hub) Publish(ctx context.Context, event events.Event) {
	select {
	case h.queue <- event:
	default:
		slog.WarnContext(ctx, "Event queue full, dropping event", "event.type", event.Type, "room.id", event.RoomID)
	}
}

func (h *Hub) deliverEvents(ctx context.Context) {
	for {
		select {
		case event := <-h.queue:
			h.deliver(ctx, event)
		case <-ctx.Done():
			for {
				select {
				case event := <-h.queue:
					h.deliver(context.WithoutCancel(ctx), event)
				default:
					return
				}
			}
		}
	}
}

func (h *Hub) deliver(ctx context.Context, event events.Event) {
	ctx, span := tracer.Start(ctx, "hub.deliverEvent", trace.WithAttributes(
		attribute.String("event.type", event.Type),
		attribute.String("room.id", event.RoomID),
	))
	defer span.End()

	h.mu.RLock()
	consumers := h.consumers
	h.mu.RUnlock()

	for _, c := range consumers {
		if err := c.Consume(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to deliver event", "event.type", event.Type, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to deliver event")
		}
	}
}
