package match

import (
	"ctchen222/Battleship/internal/game"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same value, clamped to n.
type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

// smallLayout puts a two-cell ship at (0,0)-(0,1) and a single at (5,5).
func smallLayout(game.Rand, game.Fleet) (*game.Board, error) {
	b := game.NewBoard()
	if !b.Place([]game.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}}) || !b.Place([]game.Coord{{Row: 5, Col: 5}}) {
		return nil, errors.New("layout does not fit")
	}
	return b, nil
}

func newStarted(t *testing.T, first int) *Match {
	t.Helper()
	m := New(WithRand(fixedRand(first)), WithBoardFactory(smallLayout))
	_, err := m.Join(nil, "a")
	require.NoError(t, err)
	_, err = m.Join(nil, "b")
	require.NoError(t, err)
	require.NoError(t, m.Start())
	return m
}

func TestJoinAssignsSlotsAndCapacity(t *testing.T) {
	m := New()

	p0, err := m.Join(nil, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, p0.ID)
	assert.Equal(t, game.StandardFleet.Cells(), p0.Board.RemainingShipCells())
	assert.False(t, m.Full())

	p1, err := m.Join(nil, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, p1.ID)
	assert.True(t, m.Full())

	_, err = m.Join(nil, "c")
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, StateWaiting, m.State())
}

func TestJoinReusesFreedSlot(t *testing.T) {
	m := New()
	_, err := m.Join(nil, "a")
	require.NoError(t, err)
	_, err = m.Join(nil, "b")
	require.NoError(t, err)

	_, err = m.Leave(0)
	require.NoError(t, err)

	p, err := m.Join(nil, "c")
	require.NoError(t, err)
	assert.Equal(t, 0, p.ID)
	assert.Equal(t, "c", p.SessionID)
}

func TestJoinRetriesExhaustedPlacement(t *testing.T) {
	calls := 0
	factory := func(rng game.Rand, fleet game.Fleet) (*game.Board, error) {
		calls++
		if calls < 3 {
			return nil, game.ErrPlacementExhausted
		}
		return smallLayout(rng, fleet)
	}
	m := New(WithBoardFactory(factory))

	_, err := m.Join(nil, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestJoinGivesUpAfterRetries(t *testing.T) {
	factory := func(game.Rand, game.Fleet) (*game.Board, error) {
		return nil, game.ErrPlacementExhausted
	}
	m := New(WithBoardFactory(factory))

	_, err := m.Join(nil, "a")
	assert.ErrorIs(t, err, game.ErrPlacementExhausted)
	assert.Nil(t, m.Player(0))
}

func TestStart(t *testing.T) {
	m := New(WithRand(fixedRand(1)), WithBoardFactory(smallLayout))
	_, err := m.Join(nil, "a")
	require.NoError(t, err)
	assert.ErrorIs(t, m.Start(), ErrNotEnoughPlayers)
	assert.Equal(t, NoPlayer, m.Turn())

	_, err = m.Join(nil, "b")
	require.NoError(t, err)
	require.NoError(t, m.Start())
	assert.Equal(t, StatePlaying, m.State())
	assert.Equal(t, 1, m.Turn())
	assert.NotEmpty(t, m.ID())
	assert.False(t, m.StartedAt().IsZero())
}

func TestStartRedealsBoardLeftFromPreviousGame(t *testing.T) {
	m := newStarted(t, 0)
	finish(t, m)
	stayer := m.Player(1)
	require.True(t, stayer.Board.AllSunk())

	_, err := m.Leave(0)
	require.NoError(t, err)
	newcomer, err := m.Join(nil, "c")
	require.NoError(t, err)
	joinBoard := newcomer.Board
	require.NoError(t, m.Start())

	assert.True(t, stayer.Board.Untouched())
	assert.Equal(t, 3, stayer.Board.RemainingShipCells())
	assert.Same(t, joinBoard, newcomer.Board, "an unshot board is kept")

	res, err := m.ApplyShot(0, 9, 9)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.False(t, res.GameOver)
	assert.Equal(t, StatePlaying, m.State())
}

func TestStartRedealsBoardAfterMidGameLeave(t *testing.T) {
	m := newStarted(t, 0)
	_, err := m.ApplyShot(0, 0, 0)
	require.NoError(t, err)
	require.False(t, m.Player(1).Board.Untouched())

	_, err = m.Leave(0)
	require.NoError(t, err)
	_, err = m.Join(nil, "c")
	require.NoError(t, err)
	require.NoError(t, m.Start())

	assert.True(t, m.Player(1).Board.Untouched())
	assert.Zero(t, m.Shots())
}

func TestStartFailsWhenRedealFails(t *testing.T) {
	failing := false
	factory := func(rng game.Rand, fleet game.Fleet) (*game.Board, error) {
		if failing {
			return nil, game.ErrPlacementExhausted
		}
		return smallLayout(rng, fleet)
	}
	m := New(WithRand(fixedRand(0)), WithBoardFactory(factory))
	_, err := m.Join(nil, "a")
	require.NoError(t, err)
	_, err = m.Join(nil, "b")
	require.NoError(t, err)
	require.NoError(t, m.Start())
	_, err = m.ApplyShot(0, 9, 9)
	require.NoError(t, err)
	stale := m.Player(1).Board
	_, err = m.Leave(0)
	require.NoError(t, err)
	_, err = m.Join(nil, "c")
	require.NoError(t, err)

	failing = true
	assert.ErrorIs(t, m.Start(), game.ErrPlacementExhausted)
	assert.Equal(t, StateWaiting, m.State())
	assert.Same(t, stale, m.Player(1).Board)
}

func TestApplyShotRejections(t *testing.T) {
	m := New(WithBoardFactory(smallLayout))
	_, err := m.ApplyShot(0, 0, 0)
	assert.ErrorIs(t, err, ErrNotPlaying)

	m = newStarted(t, 0)
	_, err = m.ApplyShot(1, 0, 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = m.ApplyShot(0, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidShot)
	_, err = m.ApplyShot(0, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidShot)

	_, err = m.ApplyShot(0, 9, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Turn())
	_, err = m.ApplyShot(1, 9, 9)
	require.NoError(t, err)

	_, err = m.ApplyShot(0, 9, 9)
	assert.ErrorIs(t, err, ErrAlreadyShot)
	assert.Equal(t, 0, m.Turn(), "a rejected shot keeps the turn")
	assert.Equal(t, 2, m.Shots())
}

func TestApplyShotTurnRule(t *testing.T) {
	m := newStarted(t, 0)

	res, err := m.ApplyShot(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.Equal(t, 0, res.NextTurn)
	assert.True(t, res.YourTurn(0))
	assert.False(t, res.YourTurn(1))
	assert.Nil(t, res.Won(0))

	res, err = m.ApplyShot(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSunk, res.Outcome)
	assert.ElementsMatch(t, []game.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, res.SunkCells)
	assert.Equal(t, 0, res.NextTurn, "sinking keeps the turn")

	res, err = m.ApplyShot(0, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.Equal(t, 1, res.NextTurn)
	assert.Equal(t, 1, res.Target)
}

func TestApplyShotFinishesGame(t *testing.T) {
	m := newStarted(t, 1)

	for _, c := range []game.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}} {
		_, err := m.ApplyShot(1, c.Row, c.Col)
		require.NoError(t, err)
	}
	res, err := m.ApplyShot(1, 5, 5)
	require.NoError(t, err)

	assert.True(t, res.GameOver)
	assert.Equal(t, 1, res.Winner)
	assert.Equal(t, NoPlayer, res.NextTurn)
	assert.False(t, res.YourTurn(0))
	assert.False(t, res.YourTurn(1))
	require.NotNil(t, res.Won(1))
	assert.True(t, *res.Won(1))
	assert.False(t, *res.Won(0))

	assert.Equal(t, StateFinished, m.State())
	assert.Equal(t, 1, m.Winner())
	assert.Equal(t, NoPlayer, m.Turn())

	_, err = m.ApplyShot(1, 9, 9)
	assert.ErrorIs(t, err, ErrNotPlaying)
}

// Plays full random games and checks after every shot that exactly one
// player holds the turn and that it only changes on a miss.
func TestTurnInvariantOverRandomGames(t *testing.T) {
	for seed := range uint64(25) {
		rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
		m := New(WithRand(rng))
		_, err := m.Join(nil, "a")
		require.NoError(t, err)
		_, err = m.Join(nil, "b")
		require.NoError(t, err)
		require.NoError(t, m.Start())

		fired := [2]map[game.Coord]bool{{}, {}}
		for m.State() == StatePlaying {
			shooter := m.Turn()
			require.Contains(t, []int{0, 1}, shooter)

			var target game.Coord
			for {
				target = game.Coord{Row: rng.IntN(game.Size), Col: rng.IntN(game.Size)}
				if !fired[shooter][target] {
					break
				}
			}
			fired[shooter][target] = true

			res, err := m.ApplyShot(shooter, target.Row, target.Col)
			require.NoError(t, err)
			switch {
			case res.GameOver:
				assert.Equal(t, shooter, m.Winner())
				assert.Equal(t, StateFinished, m.State())
			case res.Outcome == OutcomeMiss:
				assert.Equal(t, 1-shooter, m.Turn())
			default:
				assert.Equal(t, shooter, m.Turn())
			}
		}
		assert.True(t, m.Opponent(m.Winner()).Board.AllSunk())
	}
}

func finish(t *testing.T, m *Match) {
	t.Helper()
	shooter := m.Turn()
	for _, c := range []game.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 5, Col: 5}} {
		_, err := m.ApplyShot(shooter, c.Row, c.Col)
		require.NoError(t, err)
	}
	require.Equal(t, StateFinished, m.State())
}

func TestRequestRematch(t *testing.T) {
	m := newStarted(t, 0)

	_, err := m.RequestRematch(0)
	assert.ErrorIs(t, err, ErrRematchUnavailable)
	_, err = m.RequestRematch(4)
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	finish(t, m)
	firstID := m.ID()
	oldBoard := m.Player(1).Board

	ready, err := m.RequestRematch(0)
	require.NoError(t, err)
	assert.False(t, ready)
	assert.True(t, m.Player(0).WantsRematch)

	ready, err = m.RequestRematch(0)
	require.NoError(t, err)
	assert.False(t, ready, "a repeated request does not count twice")

	ready, err = m.RequestRematch(1)
	require.NoError(t, err)
	assert.True(t, ready)

	assert.Equal(t, StatePlaying, m.State())
	assert.Equal(t, NoPlayer, m.Winner())
	assert.Zero(t, m.Shots())
	assert.NotEqual(t, firstID, m.ID())
	assert.NotSame(t, oldBoard, m.Player(1).Board)
	assert.Equal(t, 3, m.Player(1).Board.RemainingShipCells())
	assert.False(t, m.Player(0).WantsRematch)
	assert.False(t, m.Player(1).WantsRematch)
}

func TestRequestRematchBoardFailureRollsBack(t *testing.T) {
	failing := false
	factory := func(rng game.Rand, fleet game.Fleet) (*game.Board, error) {
		if failing {
			return nil, errors.New("no boards today")
		}
		return smallLayout(rng, fleet)
	}
	m := New(WithRand(fixedRand(0)), WithBoardFactory(factory))
	_, err := m.Join(nil, "a")
	require.NoError(t, err)
	_, err = m.Join(nil, "b")
	require.NoError(t, err)
	require.NoError(t, m.Start())
	finish(t, m)

	_, err = m.RequestRematch(0)
	require.NoError(t, err)
	failing = true
	ready, err := m.RequestRematch(1)
	assert.Error(t, err)
	assert.False(t, ready)
	assert.False(t, m.Player(1).WantsRematch)
	assert.True(t, m.Player(0).WantsRematch)
	assert.Equal(t, StateFinished, m.State())
}

func TestLeave(t *testing.T) {
	m := newStarted(t, 0)

	opponent, err := m.Leave(0)
	require.NoError(t, err)
	require.NotNil(t, opponent)
	assert.Equal(t, 1, opponent.ID)
	assert.Equal(t, StateWaiting, m.State())
	assert.Equal(t, NoPlayer, m.Turn())
	assert.Nil(t, m.Player(0))
	assert.False(t, m.Full())

	opponent, err = m.Leave(1)
	require.NoError(t, err)
	assert.Nil(t, opponent)
	assert.Empty(t, m.Players())

	_, err = m.Leave(1)
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestLeaveAfterFinishClearsRematch(t *testing.T) {
	m := newStarted(t, 0)
	finish(t, m)
	_, err := m.RequestRematch(1)
	require.NoError(t, err)

	opponent, err := m.Leave(0)
	require.NoError(t, err)
	assert.False(t, opponent.WantsRematch)
	assert.Equal(t, NoPlayer, m.Winner())
	assert.Equal(t, StateWaiting, m.State())

	_, err = m.RequestRematch(1)
	assert.ErrorIs(t, err, ErrRematchUnavailable)
}
