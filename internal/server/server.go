package server

import (
	"ctchen222/Battleship/internal/api/controller"
	"ctchen222/Battleship/internal/hub"
	"ctchen222/Battleship/internal/hub/types"
	"ctchen222/Battleship/internal/transport"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub             *hub.Hub
	matchController *controller.MatchController
	upgrader        websocket.Upgrader
	connOpts        []transport.Option
}

func NewServer(h *hub.Hub, matchController *controller.MatchController, connOpts ...transport.Option) *Server {
	return &Server{
		hub:             h,
		matchController: matchController,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		connOpts: connOpts,
	}
}

// Engine builds the HTTP routes: the websocket transport, health check and
// the admin API.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/status", s.matchController.Status)
		api.GET("/matches", s.matchController.ListMatches)
		api.GET("/events", s.matchController.ListEvents)
		api.POST("/bot", s.matchController.AddBot)
	}
	return r
}

// handleWebSocket's only responsibility is to upgrade the connection and
// pass a registration request to the hub.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	conn := transport.NewWSConn(ws, s.connOpts...)
	span.SetAttributes(attribute.String("remote", conn.RemoteAddr()))

	req := &types.RegistrationRequest{
		Conn:      conn,
		Transport: transport.WebSocket,
		Ctx:       ctx,
	}
	select {
	case s.hub.Register() <- req:
	case <-ctx.Done():
		_ = conn.Close()
	}
}
