package room

import (
	"context"
	"ctchen222/Battleship/internal/events"
	"ctchen222/Battleship/internal/match"
	"ctchen222/Battleship/internal/telemetry"
	"ctchen222/Battleship/pkg/proto"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("room")

// ErrClosed is returned by Admit once the room has been shut down.
var ErrClosed = errors.New("room is closed")

const shutdownMessage = "server shutting down"

// Room hosts the single shared match. Every match mutation and every write
// that must be ordered with it happens under mu.
type Room struct {
	ID string

	mu      sync.Mutex
	match   *match.Match
	closed  bool
	sink    events.Sink
	metrics *telemetry.GameMetrics
	wg      sync.WaitGroup
}

// Option configures a Room.
type Option func(*Room)

// WithSink routes lifecycle events to sink.
func WithSink(sink events.Sink) Option {
	return func(r *Room) { r.sink = sink }
}

// WithMetrics records game metrics on m.
func WithMetrics(m *telemetry.GameMetrics) Option {
	return func(r *Room) { r.metrics = m }
}

// WithMatchOptions configures the underlying match.
func WithMatchOptions(opts ...match.Option) Option {
	return func(r *Room) { r.match = match.New(opts...) }
}

// New creates an empty room.
func New(id string, opts ...Option) *Room {
	r := &Room{
		ID:    id,
		match: match.New(),
		sink:  events.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Full reports whether both seats are taken.
func (r *Room) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.match.Full()
}

// PlayerStatus is a read-only view of one seat.
type PlayerStatus struct {
	ID                 int    `json:"id"`
	SessionID          string `json:"session_id"`
	Transport          string `json:"transport"`
	Remote             string `json:"remote"`
	RemainingShipCells int    `json:"remaining_ship_cells"`
	WantsRematch       bool   `json:"wants_rematch"`
}

// Status is a read-only view of the room for the admin API.
type Status struct {
	RoomID  string         `json:"room_id"`
	MatchID string         `json:"match_id,omitempty"`
	State   string         `json:"state"`
	Turn    int            `json:"turn"`
	Winner  int            `json:"winner"`
	Shots   int            `json:"shots"`
	Players []PlayerStatus `json:"players"`
}

// Status returns a consistent snapshot of the room.
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Status{
		RoomID:  r.ID,
		MatchID: r.match.ID(),
		State:   string(r.match.State()),
		Turn:    r.match.Turn(),
		Winner:  r.match.Winner(),
		Shots:   r.match.Shots(),
		Players: []PlayerStatus{},
	}
	for _, p := range r.match.Players() {
		ps := PlayerStatus{
			ID:           p.ID,
			SessionID:    p.SessionID,
			Transport:    p.Transport,
			WantsRematch: p.WantsRematch,
		}
		if p.Conn != nil {
			ps.Remote = p.Conn.RemoteAddr()
		}
		if p.Board != nil {
			ps.RemainingShipCells = p.Board.RemainingShipCells()
		}
		st.Players = append(st.Players, ps)
	}
	return st
}

// Shutdown says goodbye to every seated player, closes their connections and
// waits for their read pumps to finish or ctx to expire. A player that does
// not take the goodbye before ctx expires is closed without it.
func (r *Room) Shutdown(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "room.Shutdown")
	defer span.End()

	r.mu.Lock()
	r.closed = true
	players := r.match.Players()
	r.mu.Unlock()

	var farewell sync.WaitGroup
	for _, p := range players {
		farewell.Add(1)
		go func() {
			defer farewell.Done()
			r.send(ctx, p, proto.Disconnect{Message: shutdownMessage})
		}()
	}
	if err := wait(ctx, &farewell); err != nil {
		slog.WarnContext(ctx, "Shutdown goodbye interrupted", "room.id", r.ID, "error", err)
	}
	for _, p := range players {
		_ = p.Conn.Close()
	}

	if err := wait(ctx, &r.wg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Read pumps still running")
		return err
	}
	slog.InfoContext(ctx, "Room shut down", "room.id", r.ID)
	return nil
}

func wait(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publish must be called with mu held.
func (r *Room) publish(ctx context.Context, typ string, payload any) {
	ev, err := events.New(typ, r.ID, r.match.ID(), payload)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build event", "event.type", typ, "error", err)
		return
	}
	r.sink.Publish(ctx, ev)
}
