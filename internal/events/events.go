package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Pub/Sub channel and list keys
const (
	EventsChannel   = "channel:battleship:events"
	RecentEventsKey = "battleship:events:recent"
	RecentLimit     = 100
)

// Event types
const (
	TypePlayerJoined     = "player_joined"
	TypePlayerRejected   = "player_rejected"
	TypeMatchStarted     = "match_started"
	TypeShotFired        = "shot_fired"
	TypeMatchFinished    = "match_finished"
	TypeRematchRequested = "rematch_requested"
	TypePlayerLeft       = "player_left"
)

// Event represents a lifecycle notification published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	RoomID  string          `json:"room_id"`
	MatchID string          `json:"match_id,omitempty"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// New builds an event stamped with the current time.
func New(typ, roomID, matchID string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	return Event{
		Type:    typ,
		RoomID:  roomID,
		MatchID: matchID,
		At:      time.Now().UTC(),
		Payload: raw,
	}, nil
}

// Decode unmarshals the payload into dst.
func (e Event) Decode(dst any) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}

// PlayerJoinedPayload is the payload for the "player_joined" event.
type PlayerJoinedPayload struct {
	PlayerID  int    `json:"player_id"`
	SessionID string `json:"session_id"`
	Transport string `json:"transport"`
	Remote    string `json:"remote"`
}

// PlayerRejectedPayload is the payload for the "player_rejected" event.
type PlayerRejectedPayload struct {
	Remote string `json:"remote"`
	Reason string `json:"reason"`
}

// MatchStartedPayload is the payload for the "match_started" event.
type MatchStartedPayload struct {
	FirstTurn int  `json:"first_turn"`
	Rematch   bool `json:"rematch"`
}

// ShotFiredPayload is the payload for the "shot_fired" event.
type ShotFiredPayload struct {
	Shooter int    `json:"shooter"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Outcome string `json:"outcome"`
}

// MatchFinishedPayload is the payload for the "match_finished" event.
type MatchFinishedPayload struct {
	Winner     int       `json:"winner"`
	Sessions   [2]string `json:"sessions"`
	Shots      int       `json:"shots"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// RematchRequestedPayload is the payload for the "rematch_requested" event.
type RematchRequestedPayload struct {
	PlayerID int `json:"player_id"`
}

// PlayerLeftPayload is the payload for the "player_left" event.
type PlayerLeftPayload struct {
	PlayerID int    `json:"player_id"`
	Reason   string `json:"reason"`
}

// Sink receives lifecycle events. Implementations must not block the caller
// for long; a room publishes while holding its lock.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, event Event)

func (f SinkFunc) Publish(ctx context.Context, event Event) { f(ctx, event) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) {})
