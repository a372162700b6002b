package main

import (
	"context"
	"ctchen222/Battleship/internal/api/controller"
	apirepository "ctchen222/Battleship/internal/api/repository"
	"ctchen222/Battleship/internal/api/service"
	"ctchen222/Battleship/internal/config"
	"ctchen222/Battleship/internal/db"
	"ctchen222/Battleship/internal/hub"
	"ctchen222/Battleship/internal/logger"
	"ctchen222/Battleship/internal/repository"
	"ctchen222/Battleship/internal/room"
	"ctchen222/Battleship/internal/server"
	"ctchen222/Battleship/internal/telemetry"
	"ctchen222/Battleship/internal/transport"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const roomID = "main"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Config{
		Endpoint:     cfg.OTLPEndpoint,
		StdoutTraces: cfg.TraceStdout,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	metrics, err := telemetry.NewGameMetrics(nil)
	if err != nil {
		log.Fatalf("failed to create metrics: %v", err)
	}

	// Initialize SQLite DB
	DB, err := db.Connect(cfg.SQLiteDSN)
	if err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}
	defer DB.Close()

	matchRepo := apirepository.NewMatchRepository(DB)

	h := hub.NewHub()
	r := room.New(roomID, room.WithSink(h), room.WithMetrics(metrics))

	var eventSrc service.EventSource
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()

		eventRepo := repository.NewEventRepository(rdb)
		h.Subscribe(hub.ConsumerFunc(eventRepo.Publish))
		eventSrc = eventRepo
	}

	matchService := service.NewMatchService(r, matchRepo, eventSrc, h.Register(), cfg.BotDelay)
	h.Subscribe(hub.ConsumerFunc(matchService.RecordEvent))
	matchController := controller.NewMatchController(matchService)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		h.Run(hubCtx, r)
	}()

	connOpts := []transport.Option{transport.WithMaxBody(cfg.MaxFrame)}

	tcpServer, err := server.ListenTCP(cfg.TCPAddr, h.Register(), connOpts...)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", cfg.TCPAddr, err)
	}
	go func() {
		if err := tcpServer.Serve(ctx); err != nil {
			slog.Error("TCP server stopped", "error", err)
		}
	}()

	srv := server.NewServer(h, matchController, connOpts...)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(srv.Engine(), "battleship.http"),
	}
	go func() {
		slog.Info("HTTP server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tcpServer.Close(); err != nil {
		slog.Warn("Failed to close TCP listener", "error", err)
	}
	if err := r.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Room shutdown incomplete", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Server forced to shutdown", "error", err)
	}

	stopHub()
	<-hubDone

	slog.Info("Server exiting")
}
