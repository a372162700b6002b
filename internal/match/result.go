package match

import "ctchen222/Battleship/internal/game"

// Outcome classifies a resolved shot.
type Outcome string

const (
	OutcomeMiss Outcome = "miss"
	OutcomeHit  Outcome = "hit"
	OutcomeSunk Outcome = "sunk"
)

// ShotResult is the perspective-neutral record of one resolved shot.
type ShotResult struct {
	Shooter   int
	Target    int
	Row       int
	Col       int
	Outcome   Outcome
	SunkCells []game.Coord
	GameOver  bool
	Winner    int
	NextTurn  int
}

// YourTurn reports whether id may shoot next.
func (r ShotResult) YourTurn(id int) bool {
	return !r.GameOver && r.NextTurn == id
}

// Won reports the outcome for id once the game is over, nil before that.
func (r ShotResult) Won(id int) *bool {
	if !r.GameOver {
		return nil
	}
	won := r.Winner == id
	return &won
}
