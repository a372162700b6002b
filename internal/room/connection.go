package room

import (
	"context"
	"ctchen222/Battleship/internal/events"
	"ctchen222/Battleship/internal/game"
	"ctchen222/Battleship/internal/match"
	"ctchen222/Battleship/internal/player"
	"ctchen222/Battleship/pkg/proto"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	opponentLeftMessage = "Opponent disconnected"
	roomFullMessage     = "Game is full"
)

// Admit seats conn in the match, acknowledges it and starts its read pump.
// When this fills the second seat the game starts immediately. A connection
// that cannot be seated receives an error message and is closed.
func (r *Room) Admit(ctx context.Context, conn player.Connection, transport string) error {
	ctx, span := tracer.Start(ctx, "room.Admit", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("transport", transport),
		attribute.String("remote", conn.RemoteAddr()),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.reject(ctx, conn, transport, shutdownMessage, ErrClosed)
		span.SetStatus(codes.Error, "Room closed")
		return ErrClosed
	}

	p, err := r.match.Join(conn, uuid.NewString())
	if err != nil {
		msg := err.Error()
		if errors.Is(err, match.ErrCapacity) {
			msg = roomFullMessage
		}
		r.reject(ctx, conn, transport, msg, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Join failed")
		return err
	}
	p.Transport = transport
	span.SetAttributes(attribute.Int("player.id", p.ID), attribute.String("session.id", p.SessionID))

	slog.InfoContext(ctx, "Player joined", "room.id", r.ID, "player.id", p.ID, "session.id", p.SessionID, "transport", transport)
	r.metrics.ConnectionOpened(ctx, transport)
	r.send(ctx, p, proto.ConnectAck{
		PlayerID:  p.ID,
		BoardSize: game.Size,
		YourBoard: p.Board.Snapshot(false),
	})
	r.publish(ctx, events.TypePlayerJoined, events.PlayerJoinedPayload{
		PlayerID:  p.ID,
		SessionID: p.SessionID,
		Transport: transport,
		Remote:    conn.RemoteAddr(),
	})

	r.wg.Add(1)
	go r.readPump(p)

	if r.match.Full() {
		r.startMatch(ctx)
	}
	return nil
}

// reject must be called with mu held.
func (r *Room) reject(ctx context.Context, conn player.Connection, transport, msg string, cause error) {
	slog.WarnContext(ctx, "Connection rejected", "room.id", r.ID, "remote", conn.RemoteAddr(), "error", cause)
	if err := conn.WriteMessage(proto.Error{Message: msg}); err != nil {
		slog.WarnContext(ctx, "Failed to send rejection", "remote", conn.RemoteAddr(), "error", err)
	}
	_ = conn.Close()
	r.metrics.ConnectionRejected(ctx, transport)
	r.publish(ctx, events.TypePlayerRejected, events.PlayerRejectedPayload{
		Remote: conn.RemoteAddr(),
		Reason: cause.Error(),
	})
}

// readPump decodes commands from p until its connection fails, then frees
// p's seat. Invalid payloads are answered and reading continues; any other
// read error ends the connection.
func (r *Room) readPump(p *player.Player) {
	defer r.wg.Done()

	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("player.id", p.ID),
		attribute.String("session.id", p.SessionID),
	))
	defer span.End()

	for {
		msg, err := p.Conn.ReadMessage()
		if err != nil {
			if errors.Is(err, proto.ErrInvalidPayload) {
				slog.WarnContext(ctx, "Invalid message from player", "player.id", p.ID, "error", err)
				r.mu.Lock()
				r.send(ctx, p, proto.Error{Message: err.Error()})
				r.mu.Unlock()
				continue
			}

			reason := "connection closed"
			if errors.Is(err, proto.ErrUnknownMessageType) {
				reason = "protocol violation"
				r.mu.Lock()
				r.send(ctx, p, proto.Error{Message: err.Error()})
				r.mu.Unlock()
			}
			slog.InfoContext(ctx, "Player connection ended", "player.id", p.ID, "room.id", r.ID, "error", err)
			r.leave(ctx, p, reason)
			return
		}
		r.HandleMessage(ctx, p, msg)
	}
}

// leave frees p's seat, closes its connection and tells the opponent. It is
// a no-op if p no longer holds its seat.
func (r *Room) leave(ctx context.Context, p *player.Player, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(ctx, p, reason)
}

func (r *Room) leaveLocked(ctx context.Context, p *player.Player, reason string) {
	if r.match.Player(p.ID) != p {
		return
	}
	ctx, span := tracer.Start(ctx, "room.leave", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("player.id", p.ID),
		attribute.String("reason", reason),
	))
	defer span.End()

	// publish before Leave so the event still carries the match id
	r.publish(ctx, events.TypePlayerLeft, events.PlayerLeftPayload{PlayerID: p.ID, Reason: reason})
	opponent, err := r.match.Leave(p.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Leave failed")
		return
	}
	_ = p.Conn.Close()
	r.metrics.ConnectionClosed(ctx, p.Transport)
	slog.InfoContext(ctx, "Player left", "room.id", r.ID, "player.id", p.ID, "reason", reason)

	if opponent != nil && !r.closed {
		r.send(ctx, opponent, proto.OpponentDisconnected{Message: opponentLeftMessage})
	}
}

// send must be called with mu held so that writes to one player stay in
// match order. Failures are logged; the read pump notices the broken
// connection and tears it down.
func (r *Room) send(ctx context.Context, p *player.Player, msg proto.Message) {
	if err := p.Conn.WriteMessage(msg); err != nil {
		slog.WarnContext(ctx, "Failed to write message to player",
			"room.id", r.ID, "player.id", p.ID, "message.type", msg.MessageType(), "error", err)
	}
}
