package room

import (
	"context"
	"ctchen222/Battleship/internal/events"
	"ctchen222/Battleship/internal/player"
	"ctchen222/Battleship/pkg/proto"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const rematchWaitMessage = "Waiting for opponent to accept rematch"

// HandleMessage dispatches one decoded command from p.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, msg proto.Message) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("player.id", p.ID),
		attribute.String("message.type", string(msg.MessageType())),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if r.match.Player(p.ID) != p {
		slog.WarnContext(ctx, "Ignoring message from departed player", "player.id", p.ID)
		span.SetStatus(codes.Error, "Message from departed player")
		return
	}

	switch m := msg.(type) {
	case proto.Shoot:
		r.handleShoot(ctx, p, *m.Row, *m.Col)
	case proto.PlayAgain:
		r.handlePlayAgain(ctx, p)
	case proto.Disconnect:
		r.leaveLocked(ctx, p, "disconnect requested")
	default:
		err := fmt.Errorf("unexpected message type %q", msg.MessageType())
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unexpected message type")
		r.send(ctx, p, proto.Error{Message: err.Error()})
	}
}

func (r *Room) handleShoot(ctx context.Context, p *player.Player, row, col int) {
	ctx, span := tracer.Start(ctx, "room.handleShoot", trace.WithAttributes(
		attribute.Int("player.id", p.ID),
		attribute.Int("shot.row", row),
		attribute.Int("shot.col", col),
	))
	defer span.End()

	res, err := r.match.ApplyShot(p.ID, row, col)
	if err != nil {
		slog.InfoContext(ctx, "Shot rejected", "player.id", p.ID, "row", row, "col", col, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Shot rejected")
		r.send(ctx, p, proto.Error{Message: err.Error()})
		return
	}
	span.SetAttributes(attribute.String("shot.outcome", string(res.Outcome)))
	r.metrics.ShotFired(ctx, string(res.Outcome))

	r.send(ctx, p, shooterView(res))
	if opponent := r.match.Player(res.Target); opponent != nil {
		r.send(ctx, opponent, targetView(res))
	}
	r.publish(ctx, events.TypeShotFired, events.ShotFiredPayload{
		Shooter: res.Shooter,
		Row:     res.Row,
		Col:     res.Col,
		Outcome: string(res.Outcome),
	})

	if res.GameOver {
		slog.InfoContext(ctx, "Match finished", "room.id", r.ID, "match.id", r.match.ID(), "winner", res.Winner, "shots", r.match.Shots())
		r.metrics.MatchFinished(ctx)
		var sessions [2]string
		for _, seat := range r.match.Players() {
			sessions[seat.ID] = seat.SessionID
		}
		r.publish(ctx, events.TypeMatchFinished, events.MatchFinishedPayload{
			Winner:     res.Winner,
			Sessions:   sessions,
			Shots:      r.match.Shots(),
			StartedAt:  r.match.StartedAt(),
			FinishedAt: time.Now().UTC(),
		})
	}
}

func (r *Room) handlePlayAgain(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.handlePlayAgain", trace.WithAttributes(
		attribute.Int("player.id", p.ID),
	))
	defer span.End()

	ready, err := r.match.RequestRematch(p.ID)
	if err != nil {
		slog.InfoContext(ctx, "Rematch rejected", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Rematch rejected")
		r.send(ctx, p, proto.Error{Message: err.Error()})
		return
	}
	if !ready {
		r.publish(ctx, events.TypeRematchRequested, events.RematchRequestedPayload{PlayerID: p.ID})
		r.send(ctx, p, proto.Waiting{Message: rematchWaitMessage})
		return
	}

	slog.InfoContext(ctx, "Rematch agreed", "room.id", r.ID, "match.id", r.match.ID())
	r.announceStart(ctx, true)
}

// startMatch must be called with mu held and both seats taken.
func (r *Room) startMatch(ctx context.Context) {
	if err := r.match.Start(); err != nil {
		slog.ErrorContext(ctx, "Failed to start match", "room.id", r.ID, "error", err)
		return
	}
	slog.InfoContext(ctx, "Match started", "room.id", r.ID, "match.id", r.match.ID(), "first_turn", r.match.Turn())
	r.announceStart(ctx, false)
}

func (r *Room) announceStart(ctx context.Context, rematch bool) {
	r.metrics.MatchStarted(ctx, rematch)
	for _, p := range r.match.Players() {
		r.send(ctx, p, gameStartView(p, r.match.Opponent(p.ID), r.match.Turn()))
	}
	r.publish(ctx, events.TypeMatchStarted, events.MatchStartedPayload{
		FirstTurn: r.match.Turn(),
		Rematch:   rematch,
	})
}
