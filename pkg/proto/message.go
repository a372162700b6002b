package proto

// BoardSize is the side length of every board exchanged on the wire.
const BoardSize = 10

// Type is the tag carried in the "type" field of every message body.
type Type string

const (
	TypeConnectAck           Type = "connect-ack"
	TypeWaiting              Type = "waiting"
	TypeGameStart            Type = "game-start"
	TypeShoot                Type = "shoot"
	TypeShotResult           Type = "shot-result"
	TypeOpponentShot         Type = "opponent-shot"
	TypePlayAgain            Type = "play-again"
	TypeDisconnect           Type = "disconnect"
	TypeOpponentDisconnected Type = "opponent-disconnected"
	TypeError                Type = "error"
)

// Message is one of the closed set of payload types below. The concrete
// type determines the tag written on the wire.
type Message interface {
	MessageType() Type
	isMessage()
}

// Grid is a board snapshot: one small integer per cell
// (0=empty, 1=ship, 2=miss, 3=hit).
type Grid [][]int

// Outcome is the resolved result of a shot.
type Outcome string

const (
	OutcomeMiss Outcome = "miss"
	OutcomeHit  Outcome = "hit"
	OutcomeSunk Outcome = "sunk"
)

// ConnectAck is sent to a player right after it takes a seat.
type ConnectAck struct {
	PlayerID  int  `json:"playerId" validate:"min=0,max=1"`
	BoardSize int  `json:"boardSize" validate:"required,min=1"`
	YourBoard Grid `json:"yourBoard" validate:"required"`
}

// Waiting is an advisory notice, e.g. while the opponent decides on a rematch.
type Waiting struct {
	Message string `json:"message" validate:"required"`
}

// GameStart opens a game. OpponentBoard never reveals unshot ships.
type GameStart struct {
	YourTurn      bool `json:"yourTurn"`
	YourBoard     Grid `json:"yourBoard" validate:"required"`
	OpponentBoard Grid `json:"opponentBoard" validate:"required"`
}

// Shoot asks the server to fire at a cell of the opponent's board.
type Shoot struct {
	Row *int `json:"row" validate:"required,min=0,max=9"`
	Col *int `json:"col" validate:"required,min=0,max=9"`
}

// NewShoot builds a Shoot for the given cell.
func NewShoot(row, col int) Shoot {
	return Shoot{Row: &row, Col: &col}
}

// ShotResult reports a resolved shot to the player who fired it.
type ShotResult struct {
	Row       int      `json:"row" validate:"min=0,max=9"`
	Col       int      `json:"col" validate:"min=0,max=9"`
	Outcome   Outcome  `json:"outcome" validate:"oneof=miss hit sunk"`
	YourTurn  bool     `json:"yourTurn"`
	GameOver  bool     `json:"gameOver"`
	YouWon    *bool    `json:"youWon"`
	SunkCells [][2]int `json:"sunkCells,omitempty"`
}

// OpponentShot reports the same shot to the player who was fired at.
type OpponentShot ShotResult

// PlayAgain requests a rematch once a game is finished.
type PlayAgain struct{}

// Disconnect announces an orderly goodbye in either direction.
type Disconnect struct {
	Message string `json:"message,omitempty"`
}

// OpponentDisconnected tells the remaining player the other one left.
type OpponentDisconnected struct {
	Message string `json:"message" validate:"required"`
}

// Error reports a rejected command or a refused connection.
type Error struct {
	Message string `json:"message" validate:"required"`
}

func (ConnectAck) MessageType() Type           { return TypeConnectAck }
func (Waiting) MessageType() Type              { return TypeWaiting }
func (GameStart) MessageType() Type            { return TypeGameStart }
func (Shoot) MessageType() Type                { return TypeShoot }
func (ShotResult) MessageType() Type           { return TypeShotResult }
func (OpponentShot) MessageType() Type         { return TypeOpponentShot }
func (PlayAgain) MessageType() Type            { return TypePlayAgain }
func (Disconnect) MessageType() Type           { return TypeDisconnect }
func (OpponentDisconnected) MessageType() Type { return TypeOpponentDisconnected }
func (Error) MessageType() Type                { return TypeError }

func (ConnectAck) isMessage()           {}
func (Waiting) isMessage()              {}
func (GameStart) isMessage()            {}
func (Shoot) isMessage()                {}
func (ShotResult) isMessage()           {}
func (OpponentShot) isMessage()         {}
func (PlayAgain) isMessage()            {}
func (Disconnect) isMessage()           {}
func (OpponentDisconnected) isMessage() {}
func (Error) isMessage()                {}
