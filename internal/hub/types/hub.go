package types

import (
	"context"
	"ctchen222/Battleship/internal/player"
)

// RegistrationRequest asks the hub to seat a freshly accepted connection.
// If Done is set it receives the admission result.
type RegistrationRequest struct {
	Conn      player.Connection
	Transport string // "tcp", "ws" or "bot"
	Ctx       context.Context
	Done      chan<- error
}
