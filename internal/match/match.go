package match

import (
	"ctchen222/Battleship/internal/game"
	"ctchen222/Battleship/internal/player"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a match.
type State string

const (
	StateWaiting  State = "waiting"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// NoPlayer marks an absent turn holder or winner.
const NoPlayer = -1

// boardRetries bounds how many complete fleet randomizations are tried
// before giving up on a board.
const boardRetries = 16

var (
	ErrCapacity           = errors.New("game is full")
	ErrNotEnoughPlayers   = errors.New("two players are required to start")
	ErrNotPlaying         = errors.New("game is not in progress")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrNoOpponent         = errors.New("no opponent")
	ErrInvalidShot        = errors.New("shot is off the board")
	ErrAlreadyShot        = errors.New("cell was already shot")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrRematchUnavailable = errors.New("rematch is only possible after a finished game")
)

// BoardFactory produces a fully placed board for a new player or a rematch.
type BoardFactory func(rng game.Rand, fleet game.Fleet) (*game.Board, error)

// RandomBoard is the default BoardFactory.
func RandomBoard(rng game.Rand, fleet game.Fleet) (*game.Board, error) {
	b := game.NewBoard()
	if err := b.RandomizeFleet(rng, fleet); err != nil {
		return nil, err
	}
	return b, nil
}

// Match is the single source of truth for seats, turn order and outcome.
// It is not safe for concurrent use; the owner serializes every call.
type Match struct {
	id        string
	players   [2]*player.Player
	turn      int
	state     State
	winner    int
	shots     int
	startedAt time.Time

	fleet    game.Fleet
	rng      game.Rand
	newBoard BoardFactory
	now      func() time.Time
}

// Option configures a Match.
type Option func(*Match)

// WithRand sets the randomness used for layouts and the first turn.
func WithRand(rng game.Rand) Option {
	return func(m *Match) { m.rng = rng }
}

// WithFleet overrides the standard fleet.
func WithFleet(fleet game.Fleet) Option {
	return func(m *Match) { m.fleet = fleet }
}

// WithBoardFactory replaces random layouts, e.g. with fixed ones.
func WithBoardFactory(f BoardFactory) Option {
	return func(m *Match) { m.newBoard = f }
}

// WithClock sets the time source for start timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Match) { m.now = now }
}

// New creates an empty match in the waiting state.
func New(opts ...Option) *Match {
	m := &Match{
		turn:     NoPlayer,
		state:    StateWaiting,
		winner:   NoPlayer,
		fleet:    game.StandardFleet,
		rng:      game.DefaultRand,
		newBoard: RandomBoard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID identifies the current game; it changes on every start and rematch.
func (m *Match) ID() string { return m.id }

// State returns the lifecycle stage.
func (m *Match) State() State { return m.state }

// Turn returns the player expected to shoot, or NoPlayer outside of play.
func (m *Match) Turn() int {
	if m.state != StatePlaying {
		return NoPlayer
	}
	return m.turn
}

// Winner returns the winning player id, or NoPlayer.
func (m *Match) Winner() int { return m.winner }

// Shots counts resolved shots in the current game.
func (m *Match) Shots() int { return m.shots }

// StartedAt is when the current game started.
func (m *Match) StartedAt() time.Time { return m.startedAt }

// Player returns the player seated in slot id, or nil.
func (m *Match) Player(id int) *player.Player {
	if id < 0 || id >= len(m.players) {
		return nil
	}
	return m.players[id]
}

// Opponent returns the player facing id, or nil.
func (m *Match) Opponent(id int) *player.Player {
	return m.Player(1 - id)
}

// Players returns the occupied seats in slot order.
func (m *Match) Players() []*player.Player {
	out := make([]*player.Player, 0, len(m.players))
	for _, p := range m.players {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Full reports whether both seats are taken.
func (m *Match) Full() bool {
	return m.players[0] != nil && m.players[1] != nil
}

// Join seats conn in the first free slot with a freshly randomized board.
func (m *Match) Join(conn player.Connection, sessionID string) (*player.Player, error) {
	slot := NoPlayer
	for i, p := range m.players {
		if p == nil {
			slot = i
			break
		}
	}
	if slot == NoPlayer {
		return nil, ErrCapacity
	}

	board, err := m.generateBoard()
	if err != nil {
		return nil, err
	}
	p := player.NewPlayer(slot, sessionID, conn, board)
	m.players[slot] = p
	return p, nil
}

// Start begins play with a uniformly random first shooter. A seat whose
// board already took shots, e.g. one left over from a game the opponent
// walked out of, is dealt a fresh board first.
func (m *Match) Start() error {
	if !m.Full() {
		return ErrNotEnoughPlayers
	}
	var fresh [2]*game.Board
	for i, p := range m.players {
		if p.Board != nil && p.Board.Untouched() {
			continue
		}
		b, err := m.generateBoard()
		if err != nil {
			return err
		}
		fresh[i] = b
	}
	for i, b := range fresh {
		if b != nil {
			m.players[i].Board = b
		}
	}
	m.id = uuid.NewString()
	m.state = StatePlaying
	m.turn = m.rng.IntN(2)
	m.winner = NoPlayer
	m.shots = 0
	m.startedAt = m.now()
	for _, p := range m.players {
		p.WantsRematch = false
	}
	return nil
}

// ApplyShot fires shooterID's shot at the opponent's board. The turn passes
// to the opponent only on a miss; a hit, sinking or not, keeps it.
func (m *Match) ApplyShot(shooterID, row, col int) (ShotResult, error) {
	if m.state != StatePlaying {
		return ShotResult{}, ErrNotPlaying
	}
	if shooterID != m.turn {
		return ShotResult{}, ErrNotYourTurn
	}
	opponent := m.Opponent(shooterID)
	if opponent == nil {
		return ShotResult{}, ErrNoOpponent
	}
	target := game.Coord{Row: row, Col: col}
	if !target.InBounds() {
		return ShotResult{}, fmt.Errorf("%w: (%d,%d)", ErrInvalidShot, row, col)
	}
	if cell := opponent.Board.Cell(row, col); cell == game.Hit || cell == game.Miss {
		return ShotResult{}, fmt.Errorf("%w: (%d,%d)", ErrAlreadyShot, row, col)
	}

	shot := opponent.Board.ReceiveShot(row, col)
	m.shots++

	res := ShotResult{
		Shooter: shooterID,
		Target:  opponent.ID,
		Row:     row,
		Col:     col,
		Outcome: OutcomeMiss,
		Winner:  NoPlayer,
	}
	if shot.Result == game.Hit {
		res.Outcome = OutcomeHit
	}
	if shot.Sunk != nil {
		res.Outcome = OutcomeSunk
		res.SunkCells = shot.Sunk.Cells()
	}

	switch {
	case opponent.Board.AllSunk():
		m.state = StateFinished
		m.winner = shooterID
		res.GameOver = true
		res.Winner = shooterID
		res.NextTurn = NoPlayer
		return res, nil
	case res.Outcome == OutcomeMiss:
		m.turn = opponent.ID
	}
	res.NextTurn = m.turn
	return res, nil
}

// RequestRematch records playerID's wish to play again. When both players
// want it, new boards are dealt and play resumes at once; ready reports that.
// If new boards cannot be dealt the request is rolled back.
func (m *Match) RequestRematch(playerID int) (ready bool, err error) {
	p := m.Player(playerID)
	if p == nil {
		return false, ErrUnknownPlayer
	}
	if m.state != StateFinished {
		return false, ErrRematchUnavailable
	}
	p.WantsRematch = true
	opponent := m.Opponent(playerID)
	if opponent == nil || !opponent.WantsRematch {
		return false, nil
	}

	var boards [2]*game.Board
	for i := range boards {
		b, err := m.generateBoard()
		if err != nil {
			p.WantsRematch = false
			return false, err
		}
		boards[i] = b
	}
	for i, seat := range m.players {
		seat.Board = boards[i]
	}
	if err := m.Start(); err != nil {
		return false, err
	}
	return true, nil
}

// Leave frees playerID's seat and returns the match to waiting, whatever
// stage it was in. It returns the remaining opponent, if any.
func (m *Match) Leave(playerID int) (*player.Player, error) {
	if m.Player(playerID) == nil {
		return nil, ErrUnknownPlayer
	}
	m.players[playerID] = nil
	m.state = StateWaiting
	m.turn = NoPlayer
	m.winner = NoPlayer

	opponent := m.Opponent(playerID)
	if opponent != nil {
		opponent.WantsRematch = false
	}
	return opponent, nil
}

func (m *Match) generateBoard() (*game.Board, error) {
	var err error
	for range boardRetries {
		var b *game.Board
		b, err = m.newBoard(m.rng, m.fleet)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, game.ErrPlacementExhausted) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to deal a board after %d attempts: %w", boardRetries, err)
}
