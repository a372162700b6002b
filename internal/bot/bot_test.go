package bot

import (
	"context"
	"ctchen222/Battleship/internal/events"
	"ctchen222/Battleship/internal/room"
	"ctchen222/Battleship/internal/transport"
	"ctchen222/Battleship/pkg/proto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readWithin(t *testing.T, bc *BotConnection, d time.Duration) proto.Message {
	t.Helper()
	type result struct {
		msg proto.Message
		err error
	}
	ch := make(chan result, 1)
	go func() {
		msg, err := bc.ReadMessage()
		ch <- result{msg, err}
	}()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.msg
	case <-time.After(d):
		t.Fatal("bot did not act")
		return nil
	}
}

func TestBotShootsOnItsTurn(t *testing.T) {
	bc := NewBotConnection(Medium, 0, newRand(3))
	defer bc.Close()

	require.NoError(t, bc.WriteMessage(proto.GameStart{YourTurn: true}))
	msg := readWithin(t, bc, time.Second)
	shot, ok := msg.(proto.Shoot)
	require.True(t, ok, "got %#v", msg)
	assert.True(t, (*shot.Row) >= 0 && *shot.Row < 10)

	require.NoError(t, bc.WriteMessage(proto.ShotResult{Row: *shot.Row, Col: *shot.Col, Outcome: proto.OutcomeHit, YourTurn: true}))
	next := readWithin(t, bc, time.Second).(proto.Shoot)
	dist := abs(*next.Row-*shot.Row) + abs(*next.Col-*shot.Col)
	assert.Equal(t, 1, dist, "medium bot probes next to a hit")
}

func TestBotWaitsForItsTurn(t *testing.T) {
	bc := NewBotConnection(Easy, 0, newRand(1))
	defer bc.Close()

	require.NoError(t, bc.WriteMessage(proto.GameStart{YourTurn: false}))
	require.NoError(t, bc.WriteMessage(proto.OpponentShot{Row: 1, Col: 1, Outcome: proto.OutcomeHit, YourTurn: false}))

	select {
	case msg := <-bc.commands:
		t.Fatalf("unexpected command %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, bc.WriteMessage(proto.OpponentShot{Row: 2, Col: 2, Outcome: proto.OutcomeMiss, YourTurn: true}))
	assert.IsType(t, proto.Shoot{}, readWithin(t, bc, time.Second))
}

func TestBotAsksForRematch(t *testing.T) {
	bc := NewBotConnection(Hard, 0, newRand(1))
	defer bc.Close()

	won := false
	require.NoError(t, bc.WriteMessage(proto.OpponentShot{Row: 0, Col: 0, Outcome: proto.OutcomeSunk, GameOver: true, YouWon: &won}))
	assert.Equal(t, proto.PlayAgain{}, readWithin(t, bc, time.Second))
}

func TestBotClose(t *testing.T) {
	bc := NewBotConnection(Easy, time.Hour, nil)
	require.NoError(t, bc.WriteMessage(proto.GameStart{YourTurn: true}))
	require.NoError(t, bc.Close())
	require.NoError(t, bc.Close())

	_, err := bc.ReadMessage()
	assert.ErrorIs(t, err, proto.ErrFraming)
	assert.Error(t, bc.WriteMessage(proto.PlayAgain{}))
}

func TestBotsPlayAFullGame(t *testing.T) {
	finished := make(chan events.Event, 4)
	sink := events.SinkFunc(func(_ context.Context, ev events.Event) {
		if ev.Type == events.TypeMatchFinished {
			select {
			case finished <- ev:
			default:
			}
		}
	})
	r := room.New("bots", room.WithSink(sink))
	ctx := context.Background()

	require.NoError(t, r.Admit(ctx, NewBotConnection(Hard, 0, newRand(11)), transport.Bot))
	require.NoError(t, r.Admit(ctx, NewBotConnection(Easy, 0, newRand(12)), transport.Bot))

	// the bots agree to a rematch, so a second game follows the first
	for range 2 {
		select {
		case ev := <-finished:
			var payload events.MatchFinishedPayload
			require.NoError(t, ev.Decode(&payload))
			assert.Contains(t, []int{0, 1}, payload.Winner)
			assert.GreaterOrEqual(t, payload.Shots, 20)
			assert.LessOrEqual(t, payload.Shots, 200)
		case <-time.After(10 * time.Second):
			t.Fatal("bots did not finish a game")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(shutdownCtx))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
