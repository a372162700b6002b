package service

import (
	"context"
	"ctchen222/Battleship/internal/api/models"
	"ctchen222/Battleship/internal/api/repository"
	"ctchen222/Battleship/internal/bot"
	"ctchen222/Battleship/internal/events"
	"ctchen222/Battleship/internal/hub/types"
	"ctchen222/Battleship/internal/match"
	"ctchen222/Battleship/internal/room"
	"ctchen222/Battleship/internal/transport"
	"errors"
	"fmt"
	"time"
)

const defaultListLimit = 20

var (
	ErrRoomFull          = errors.New("game is full")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// EventSource lists recently published lifecycle events.
type EventSource interface {
	Recent(ctx context.Context, limit int) ([]events.Event, error)
}

// MatchService defines the interface for the admin API's business logic.
type MatchService interface {
	Status(ctx context.Context) room.Status
	RecentMatches(ctx context.Context, limit int) ([]models.Match, error)
	RecentEvents(ctx context.Context, limit int) ([]events.Event, error)
	AddBot(ctx context.Context, difficulty string) error
	RecordEvent(ctx context.Context, event events.Event) error
}

type matchService struct {
	room      *room.Room
	matchRepo repository.MatchRepository
	eventSrc  EventSource
	register  chan<- *types.RegistrationRequest
	botDelay  time.Duration
}

// NewMatchService creates a new MatchService. eventSrc may be nil when no
// event store is configured.
func NewMatchService(r *room.Room, matchRepo repository.MatchRepository, eventSrc EventSource, register chan<- *types.RegistrationRequest, botDelay time.Duration) MatchService {
	return &matchService{
		room:      r,
		matchRepo: matchRepo,
		eventSrc:  eventSrc,
		register:  register,
		botDelay:  botDelay,
	}
}

func (s *matchService) Status(ctx context.Context) room.Status {
	return s.room.Status()
}

func (s *matchService) RecentMatches(ctx context.Context, limit int) ([]models.Match, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.matchRepo.ListRecent(ctx, limit)
}

func (s *matchService) RecentEvents(ctx context.Context, limit int) ([]events.Event, error) {
	if s.eventSrc == nil {
		return []events.Event{}, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.eventSrc.Recent(ctx, limit)
}

// AddBot seats an in-process bot in the free slot and waits for the hub to
// admit it.
func (s *matchService) AddBot(ctx context.Context, difficulty string) error {
	d, err := bot.ParseDifficulty(difficulty)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDifficulty, err)
	}
	if s.room.Full() {
		return ErrRoomFull
	}

	conn := bot.NewBotConnection(d, s.botDelay, nil)
	done := make(chan error, 1)
	req := &types.RegistrationRequest{
		Conn:      conn,
		Transport: transport.Bot,
		Ctx:       context.WithoutCancel(ctx),
		Done:      done,
	}
	select {
	case s.register <- req:
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}

	select {
	case err := <-done:
		if errors.Is(err, match.ErrCapacity) {
			return ErrRoomFull
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordEvent stores finished matches in the ledger and ignores other events.
func (s *matchService) RecordEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.TypeMatchFinished {
		return nil
	}
	var payload events.MatchFinishedPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	if payload.Winner != 0 && payload.Winner != 1 {
		return fmt.Errorf("match %s finished without a winner", event.MatchID)
	}

	return s.matchRepo.Create(ctx, &models.Match{
		ID:            event.MatchID,
		RoomID:        event.RoomID,
		WinnerID:      payload.Winner,
		WinnerSession: payload.Sessions[payload.Winner],
		LoserSession:  payload.Sessions[1-payload.Winner],
		Shots:         payload.Shots,
		StartedAt:     payload.StartedAt,
		FinishedAt:    payload.FinishedAt,
	})
}
