package game

import (
	"errors"
	"math/rand/v2"
)

// Cell is the state of one grid square. The numeric values are the ones
// used in board snapshots.
type Cell int

const (
	Empty    Cell = 0
	ShipCell Cell = 1
	Miss     Cell = 2
	Hit      Cell = 3
)

// Size is the side length of a board.
const Size = 10

// placementAttempts bounds the random tries spent on a single ship.
const placementAttempts = 1000

// ErrPlacementExhausted is returned when a random layout could not be
// completed within the attempt budget. Retry the whole randomization.
var ErrPlacementExhausted = errors.New("fleet placement attempts exhausted")

// Coord addresses a cell by row and column.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether c lies on a Size x Size board.
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Rand is the randomness a board and a match draw from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the process-wide math/rand/v2 source.
var DefaultRand Rand = globalRand{}
