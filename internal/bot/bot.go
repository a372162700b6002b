package bot

import (
	"ctchen222/Battleship/internal/game"
	"ctchen222/Battleship/pkg/proto"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BotConnection is an in-process player. The room writes server messages to
// it; the bot answers with commands that the room's read pump picks up.
// It implements the player.Connection interface.
type BotConnection struct {
	id         string
	difficulty Difficulty
	delay      time.Duration
	rng        game.Rand

	commands  chan proto.Message
	done      chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	tracker    Tracker
	generation int
	timer      *time.Timer
}

// NewBotConnection creates a bot that waits delay before each command.
// A nil rng uses the process-wide source.
func NewBotConnection(difficulty Difficulty, delay time.Duration, rng game.Rand) *BotConnection {
	if rng == nil {
		rng = game.DefaultRand
	}
	return &BotConnection{
		id:         "bot-" + uuid.New().String()[:8],
		difficulty: difficulty,
		delay:      delay,
		rng:        rng,
		commands:   make(chan proto.Message),
		done:       make(chan struct{}),
	}
}

// ReadMessage blocks until the bot decides on its next command.
func (bc *BotConnection) ReadMessage() (proto.Message, error) {
	select {
	case msg := <-bc.commands:
		return msg, nil
	case <-bc.done:
		return nil, fmt.Errorf("%w: %w", proto.ErrFraming, io.EOF)
	}
}

// WriteMessage is called by the room to send game state to the bot.
// It never blocks; reactions are scheduled after the bot's delay.
func (bc *BotConnection) WriteMessage(msg proto.Message) error {
	select {
	case <-bc.done:
		return io.ErrClosedPipe
	default:
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	switch m := msg.(type) {
	case proto.ConnectAck:
		slog.Debug("Bot seated", "bot.id", bc.id, "player.id", m.PlayerID, "difficulty", bc.difficulty)
	case proto.GameStart:
		bc.newGameLocked()
		if m.YourTurn {
			bc.scheduleLocked(bc.nextShotLocked)
		}
	case proto.ShotResult:
		bc.tracker.Record(m.Row, m.Col, m.Outcome, m.SunkCells)
		bc.react(m.GameOver, m.YourTurn)
	case proto.OpponentShot:
		bc.react(m.GameOver, m.YourTurn)
	case proto.OpponentDisconnected:
		bc.newGameLocked()
	case proto.Error:
		slog.Debug("Bot command rejected", "bot.id", bc.id, "message", m.Message)
	case proto.Disconnect:
		go bc.Close()
	}
	return nil
}

func (bc *BotConnection) react(gameOver, yourTurn bool) {
	switch {
	case gameOver:
		bc.scheduleLocked(func() proto.Message { return proto.PlayAgain{} })
	case yourTurn:
		bc.scheduleLocked(bc.nextShotLocked)
	}
}

func (bc *BotConnection) newGameLocked() {
	bc.generation++
	bc.tracker.Reset()
	if bc.timer != nil {
		bc.timer.Stop()
	}
}

// nextShotLocked runs with mu held.
func (bc *BotConnection) nextShotLocked() proto.Message {
	target, ok := bc.tracker.CalculateNextShot(bc.difficulty, bc.rng)
	if !ok {
		return nil
	}
	return proto.NewShoot(target.Row, target.Col)
}

// scheduleLocked delivers the command built by next after the bot's delay,
// unless a new game began in the meantime.
func (bc *BotConnection) scheduleLocked(next func() proto.Message) {
	gen := bc.generation
	bc.timer = time.AfterFunc(bc.delay, func() {
		bc.mu.Lock()
		if gen != bc.generation {
			bc.mu.Unlock()
			return
		}
		msg := next()
		bc.mu.Unlock()
		if msg == nil {
			return
		}
		select {
		case bc.commands <- msg:
		case <-bc.done:
		}
	})
}

// Close stops the bot; a pending ReadMessage returns an error.
func (bc *BotConnection) Close() error {
	bc.closeOnce.Do(func() {
		close(bc.done)
		bc.mu.Lock()
		if bc.timer != nil {
			bc.timer.Stop()
		}
		bc.mu.Unlock()
	})
	return nil
}

func (bc *BotConnection) RemoteAddr() string {
	return bc.id
}
