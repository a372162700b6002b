package hub

import (
	"context"
	"ctchen222/Battleship/internal/hub/types"
	"ctchen222/Battleship/internal/room"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleRegistration(ctx context.Context, r *room.Room, req *types.RegistrationRequest) {
	reqCtx := req.Ctx
	if reqCtx == nil {
		reqCtx = ctx
	}
	reqCtx, span := tracer.Start(reqCtx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("transport", req.Transport),
		attribute.String("remote", req.Conn.RemoteAddr()),
	))
	defer span.End()

	err := r.Admit(reqCtx, req.Conn, req.Transport)
	if err != nil {
		slog.InfoContext(reqCtx, "Registration refused", "transport", req.Transport, "remote", req.Conn.RemoteAddr(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Registration refused")
	}
	if req.Done != nil {
		req.Done <- err
	}
}
