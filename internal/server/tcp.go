package server

import (
	"context"
	"ctchen222/Battleship/internal/hub/types"
	"ctchen222/Battleship/internal/transport"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

const acceptBackoff = 50 * time.Millisecond

// TCPServer accepts framed stream connections and hands them to the hub.
type TCPServer struct {
	ln       net.Listener
	register chan<- *types.RegistrationRequest
	connOpts []transport.Option
}

// ListenTCP binds addr. Failing to bind is the only fatal startup error.
func ListenTCP(addr string, register chan<- *types.RegistrationRequest, connOpts ...transport.Option) (*TCPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &TCPServer{ln: ln, register: register, connOpts: connOpts}, nil
}

// Addr returns the bound address.
func (s *TCPServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until the listener is closed or ctx is done.
func (s *TCPServer) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "TCP server started", "addr", s.ln.Addr().String())
	for {
		raw, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			slog.WarnContext(ctx, "Accept failed", "error", err)
			time.Sleep(acceptBackoff)
			continue
		}

		connCtx, span := tracer.Start(ctx, "server.acceptTCP")
		conn := transport.NewFramedConn(raw, s.connOpts...)
		req := &types.RegistrationRequest{
			Conn:      conn,
			Transport: transport.TCP,
			Ctx:       connCtx,
		}
		select {
		case s.register <- req:
		case <-ctx.Done():
			_ = conn.Close()
		}
		span.End()
	}
}

// Close stops accepting new connections.
func (s *TCPServer) Close() error {
	return s.ln.Close()
}
