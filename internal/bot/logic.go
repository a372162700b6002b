package bot

import (
	"ctchen222/Battleship/internal/game"
	"ctchen222/Battleship/pkg/proto"
	"errors"
	"fmt"
)

// Difficulty selects how the bot picks its next shot.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty maps a query value to a Difficulty. Empty means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case "":
		return Medium, nil
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

type mark uint8

const (
	unknown mark = iota
	missed
	hit
	sunk
)

// Tracker is the bot's picture of the opponent's board, built from shot results.
type Tracker struct {
	cells [game.Size][game.Size]mark
}

// Reset forgets every recorded shot.
func (t *Tracker) Reset() {
	t.cells = [game.Size][game.Size]mark{}
}

// Record notes the outcome of the bot's own shot.
func (t *Tracker) Record(row, col int, outcome proto.Outcome, sunkCells [][2]int) {
	c := game.Coord{Row: row, Col: col}
	if !c.InBounds() {
		return
	}
	switch outcome {
	case proto.OutcomeMiss:
		t.cells[row][col] = missed
	case proto.OutcomeHit:
		t.cells[row][col] = hit
	case proto.OutcomeSunk:
		t.cells[row][col] = sunk
		for _, sc := range sunkCells {
			if (game.Coord{Row: sc[0], Col: sc[1]}).InBounds() {
				t.cells[sc[0]][sc[1]] = sunk
			}
		}
	}
}

// CalculateNextShot picks an unshot cell for the given difficulty. ok is
// false only when every cell has been shot.
func (t *Tracker) CalculateNextShot(d Difficulty, rng game.Rand) (target game.Coord, ok bool) {
	switch d {
	case Easy:
		return pick(t.unknownCells(func(game.Coord) bool { return true }), rng)
	case Hard:
		return t.hardShot(rng)
	default:
		return t.mediumShot(rng)
	}
}

// mediumShot finishes off a wounded ship before hunting at random.
func (t *Tracker) mediumShot(rng game.Rand) (game.Coord, bool) {
	if c, ok := pick(t.targetCells(func(game.Coord) bool { return true }), rng); ok {
		return c, true
	}
	return pick(t.unknownCells(func(game.Coord) bool { return true }), rng)
}

// hardShot also skips the ring around sunk ships, where no ship can be, and
// hunts on one checkerboard colour first. Singles on the other colour are
// found by the fallback.
func (t *Tracker) hardShot(rng game.Rand) (game.Coord, bool) {
	open := func(c game.Coord) bool { return !t.nearSunk(c) }
	if c, ok := pick(t.targetCells(open), rng); ok {
		return c, true
	}
	if c, ok := pick(t.unknownCells(func(c game.Coord) bool { return open(c) && (c.Row+c.Col)%2 == 0 }), rng); ok {
		return c, true
	}
	if c, ok := pick(t.unknownCells(open), rng); ok {
		return c, true
	}
	return pick(t.unknownCells(func(game.Coord) bool { return true }), rng)
}

// targetCells lists unshot cells that could continue a ship hit but not sunk.
// With two or more aligned hits only the ends of the line qualify.
func (t *Tracker) targetCells(allow func(game.Coord) bool) []game.Coord {
	var out []game.Coord
	for r := range game.Size {
		for c := range game.Size {
			if t.cells[r][c] != hit {
				continue
			}
			h := game.Coord{Row: r, Col: c}
			horizontal := t.is(game.Coord{Row: r, Col: c - 1}, hit) || t.is(game.Coord{Row: r, Col: c + 1}, hit)
			vertical := t.is(game.Coord{Row: r - 1, Col: c}, hit) || t.is(game.Coord{Row: r + 1, Col: c}, hit)

			var dirs [][2]int
			switch {
			case horizontal:
				dirs = [][2]int{{0, -1}, {0, 1}}
			case vertical:
				dirs = [][2]int{{-1, 0}, {1, 0}}
			default:
				dirs = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
			}
			for _, d := range dirs {
				next := game.Coord{Row: h.Row + d[0], Col: h.Col + d[1]}
				for t.is(next, hit) {
					next = game.Coord{Row: next.Row + d[0], Col: next.Col + d[1]}
				}
				if t.is(next, unknown) && allow(next) {
					out = append(out, next)
				}
			}
		}
	}
	return out
}

func (t *Tracker) unknownCells(allow func(game.Coord) bool) []game.Coord {
	var out []game.Coord
	for r := range game.Size {
		for c := range game.Size {
			cell := game.Coord{Row: r, Col: c}
			if t.cells[r][c] == unknown && allow(cell) {
				out = append(out, cell)
			}
		}
	}
	return out
}

func (t *Tracker) nearSunk(c game.Coord) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if t.is(game.Coord{Row: c.Row + dr, Col: c.Col + dc}, sunk) {
				return true
			}
		}
	}
	return false
}

func (t *Tracker) is(c game.Coord, m mark) bool {
	return c.InBounds() && t.cells[c.Row][c.Col] == m
}

func pick(cells []game.Coord, rng game.Rand) (game.Coord, bool) {
	if len(cells) == 0 {
		return game.Coord{}, false
	}
	return cells[rng.IntN(len(cells))], true
}
