package player

import (
	"ctchen222/Battleship/internal/game"
	"ctchen222/Battleship/pkg/proto"
)

// Connection abstracts the transport a player is attached to. Writes must be
// safe to call from several goroutines; reads happen on one goroutine only.
type Connection interface {
	ReadMessage() (proto.Message, error)
	WriteMessage(msg proto.Message) error
	Close() error
	RemoteAddr() string
}

// Player is a seated participant: slot 0 or 1, its connection and own board.
type Player struct {
	ID           int
	SessionID    string
	Transport    string
	Conn         Connection
	Board        *game.Board
	WantsRematch bool
}

// NewPlayer creates a player for the given slot.
func NewPlayer(id int, sessionID string, conn Connection, board *game.Board) *Player {
	return &Player{
		ID:        id,
		SessionID: sessionID,
		Conn:      conn,
		Board:     board,
	}
}
