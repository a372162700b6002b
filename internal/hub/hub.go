package hub

import (
	"context"
	"ctchen222/Battleship/internal/events"
	"ctchen222/Battleship/internal/hub/types"
	"ctchen222/Battleship/internal/room"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hub")

// ErrStopped is reported to registrations still queued when the hub stops.
var ErrStopped = errors.New("hub stopped")

const (
	defaultRegisterBuffer = 16
	defaultEventBuffer    = 256
)

// Consumer receives lifecycle events off the gameplay path.
type Consumer interface {
	Consume(ctx context.Context, event events.Event) error
}

// ConsumerFunc adapts a function to a Consumer.
type ConsumerFunc func(ctx context.Context, event events.Event) error

func (f ConsumerFunc) Consume(ctx context.Context, event events.Event) error { return f(ctx, event) }

// Hub admits connections into the room one at a time and fans lifecycle
// events out to its consumers.
type Hub struct {
	register chan *types.RegistrationRequest
	queue    chan events.Event

	mu        sync.RWMutex
	consumers []Consumer
}

// Option configures a Hub.
type Option func(*Hub)

// WithEventBuffer sets how many events may wait for consumers before new
// ones are dropped.
func WithEventBuffer(n int) Option {
	return func(h *Hub) { h.queue = make(chan events.Event, n) }
}

// NewHub creates a new hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		register: make(chan *types.RegistrationRequest, defaultRegisterBuffer),
		queue:    make(chan events.Event, defaultEventBuffer),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe adds a consumer for lifecycle events.
func (h *Hub) Subscribe(c Consumer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.consumers = append(h.consumers, c)
}

// Run admits registrations into r and delivers events until ctx is done.
// Pending events are delivered before Run returns; pending registrations
// are closed and told ErrStopped.
func (h *Hub) Run(ctx context.Context, r *room.Room) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.deliverEvents(ctx)
	}()

	slog.InfoContext(ctx, "Hub started", "room.id", r.ID)
	for {
		select {
		case <-ctx.Done():
			h.dropPending()
			<-done
			slog.Info("Hub stopped", "room.id", r.ID)
			return
		case req := <-h.register:
			if ctx.Err() != nil {
				h.drop(req)
				continue
			}
			h.handleRegistration(ctx, r, req)
		}
	}
}

// dropPending closes connections that registered but were never admitted.
func (h *Hub) dropPending() {
	for {
		select {
		case req := <-h.register:
			h.drop(req)
		default:
			return
		}
	}
}

func (h *Hub) drop(req *types.RegistrationRequest) {
	slog.Info("Dropping pending registration", "transport", req.Transport, "remote", req.Conn.RemoteAddr())
	_ = req.Conn.Close()
	if req.Done != nil {
		select {
		case req.Done <- ErrStopped:
		default:
		}
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}
