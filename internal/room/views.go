package room

import (
	"ctchen222/Battleship/internal/game"
	"ctchen222/Battleship/internal/match"
	"ctchen222/Battleship/internal/player"
	"ctchen222/Battleship/pkg/proto"
)

// shotView projects a resolved shot onto viewer's perspective.
func shotView(res match.ShotResult, viewer int) proto.ShotResult {
	return proto.ShotResult{
		Row:       res.Row,
		Col:       res.Col,
		Outcome:   proto.Outcome(res.Outcome),
		YourTurn:  res.YourTurn(viewer),
		GameOver:  res.GameOver,
		YouWon:    res.Won(viewer),
		SunkCells: pairs(res.SunkCells),
	}
}

func shooterView(res match.ShotResult) proto.ShotResult {
	return shotView(res, res.Shooter)
}

func targetView(res match.ShotResult) proto.OpponentShot {
	return proto.OpponentShot(shotView(res, res.Target))
}

// gameStartView reveals p's own board and masks the opponent's.
func gameStartView(p, opponent *player.Player, turn int) proto.GameStart {
	msg := proto.GameStart{
		YourTurn:  turn == p.ID,
		YourBoard: p.Board.Snapshot(false),
	}
	if opponent != nil {
		msg.OpponentBoard = opponent.Board.Snapshot(true)
	}
	return msg
}

func pairs(cells []game.Coord) [][2]int {
	if len(cells) == 0 {
		return nil
	}
	out := make([][2]int, len(cells))
	for i, c := range cells {
		out[i] = [2]int{c.Row, c.Col}
	}
	return out
}
