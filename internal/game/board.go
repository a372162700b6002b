package game

import (
	"cmp"
	"fmt"
	"slices"
)

// Board is one player's grid and the ships placed on it.
// A Board is not safe for concurrent use.
type Board struct {
	grid  [Size][Size]Cell
	owner [Size][Size]*Ship
	ships []*Ship
}

// Shot is the result of ReceiveShot. Result is Hit or Miss for a shot on
// the board and Empty for a shot that missed the board entirely. Sunk is set
// only by the shot that completed a ship.
type Shot struct {
	Result Cell
	Sunk   *Ship
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Cell returns the state at (row, col), or Empty when off the board.
func (b *Board) Cell(row, col int) Cell {
	if !(Coord{Row: row, Col: col}).InBounds() {
		return Empty
	}
	return b.grid[row][col]
}

// Ships returns the placed ships.
func (b *Board) Ships() []*Ship {
	return append([]*Ship(nil), b.ships...)
}

// CanPlace reports whether a ship could occupy cells: all on the board, none
// already taken, and no neighbouring cell (diagonals included) holding
// another ship.
func (b *Board) CanPlace(cells []Coord) bool {
	if len(cells) == 0 {
		return false
	}
	proposed := make(map[Coord]struct{}, len(cells))
	for _, c := range cells {
		proposed[c] = struct{}{}
	}
	for _, c := range cells {
		if !c.InBounds() || b.grid[c.Row][c.Col] != Empty {
			return false
		}
		for _, n := range neighbours(c) {
			if _, own := proposed[n]; own {
				continue
			}
			if b.owner[n.Row][n.Col] != nil {
				return false
			}
		}
	}
	return true
}

// Place adds a ship on cells if CanPlace allows it. The board is untouched
// when it returns false.
func (b *Board) Place(cells []Coord) bool {
	if !b.CanPlace(cells) {
		return false
	}
	ship := NewShip(cells)
	b.ships = append(b.ships, ship)
	for _, c := range cells {
		b.grid[c.Row][c.Col] = ShipCell
		b.owner[c.Row][c.Col] = ship
	}
	return true
}

// RandomizeFleet replaces the board content with a random legal layout of
// fleet. Every ship gets placementAttempts tries; if one runs out the board
// is left as it was and ErrPlacementExhausted is returned.
func (b *Board) RandomizeFleet(rng Rand, fleet Fleet) error {
	if err := fleet.Validate(); err != nil {
		return err
	}
	if rng == nil {
		rng = DefaultRand
	}

	next := NewBoard()
	for _, entry := range fleet {
		for range entry.Count {
			if !next.placeRandom(rng, entry.Size) {
				return fmt.Errorf("%w: ship of size %d after %d attempts", ErrPlacementExhausted, entry.Size, placementAttempts)
			}
		}
	}
	*b = *next
	return nil
}

func (b *Board) placeRandom(rng Rand, size int) bool {
	cells := make([]Coord, size)
	for range placementAttempts {
		horizontal := rng.IntN(2) == 0
		var origin Coord
		if horizontal {
			origin = Coord{Row: rng.IntN(Size), Col: rng.IntN(Size - size + 1)}
		} else {
			origin = Coord{Row: rng.IntN(Size - size + 1), Col: rng.IntN(Size)}
		}
		for i := range cells {
			if horizontal {
				cells[i] = Coord{Row: origin.Row, Col: origin.Col + i}
			} else {
				cells[i] = Coord{Row: origin.Row + i, Col: origin.Col}
			}
		}
		if b.Place(cells) {
			return true
		}
	}
	return false
}

// ReceiveShot resolves a shot at (row, col). A shot off the board changes
// nothing and reports Empty. A repeat shot on a Hit or Miss cell changes
// nothing and reports that cell's state again, without a sunk ship.
func (b *Board) ReceiveShot(row, col int) Shot {
	c := Coord{Row: row, Col: col}
	if !c.InBounds() {
		return Shot{Result: Empty}
	}

	switch b.grid[row][col] {
	case ShipCell:
		b.grid[row][col] = Hit
		ship := b.owner[row][col]
		ship.hit(c)
		if ship.Sunk() {
			return Shot{Result: Hit, Sunk: ship}
		}
		return Shot{Result: Hit}
	case Empty:
		b.grid[row][col] = Miss
		return Shot{Result: Miss}
	default:
		return Shot{Result: b.grid[row][col]}
	}
}

// AllSunk reports whether every ship on the board is sunk.
func (b *Board) AllSunk() bool {
	for _, s := range b.ships {
		if !s.Sunk() {
			return false
		}
	}
	return true
}

// Untouched reports whether no shot has landed on the board yet.
func (b *Board) Untouched() bool {
	for r := range Size {
		for c := range Size {
			if cell := b.grid[r][c]; cell == Hit || cell == Miss {
				return false
			}
		}
	}
	return true
}

// RemainingShipCells counts ship cells not yet hit.
func (b *Board) RemainingShipCells() int {
	remaining := 0
	for _, s := range b.ships {
		remaining += s.Size() - s.Hits()
	}
	return remaining
}

// Snapshot exports the grid as small integers. With hideShips set, unshot
// ship cells are reported as Empty so the board can be shown to the opponent.
func (b *Board) Snapshot(hideShips bool) [][]int {
	out := make([][]int, Size)
	for r := range Size {
		out[r] = make([]int, Size)
		for c := range Size {
			cell := b.grid[r][c]
			if hideShips && cell == ShipCell {
				cell = Empty
			}
			out[r][c] = int(cell)
		}
	}
	return out
}

// BoardFromSnapshot rebuilds a board from an unmasked snapshot. Ships are
// recovered as connected groups of ShipCell/Hit cells, which is unambiguous
// because ships never touch.
func BoardFromSnapshot(grid [][]int) (*Board, error) {
	if len(grid) != Size {
		return nil, fmt.Errorf("snapshot has %d rows, want %d", len(grid), Size)
	}
	b := NewBoard()
	for r, row := range grid {
		if len(row) != Size {
			return nil, fmt.Errorf("snapshot row %d has %d cells, want %d", r, len(row), Size)
		}
		for c, v := range row {
			cell := Cell(v)
			if cell < Empty || cell > Hit {
				return nil, fmt.Errorf("snapshot cell (%d,%d) has unknown state %d", r, c, v)
			}
			b.grid[r][c] = cell
		}
	}

	var seen [Size][Size]bool
	for r := range Size {
		for c := range Size {
			if seen[r][c] || !isShipCell(b.grid[r][c]) {
				continue
			}
			group := b.collectShip(Coord{Row: r, Col: c}, &seen)
			slices.SortFunc(group, func(a, b Coord) int {
				return cmp.Or(cmp.Compare(a.Row, b.Row), cmp.Compare(a.Col, b.Col))
			})
			ship := NewShip(group)
			for _, cell := range group {
				b.owner[cell.Row][cell.Col] = ship
				if b.grid[cell.Row][cell.Col] == Hit {
					ship.hit(cell)
				}
			}
			b.ships = append(b.ships, ship)
		}
	}
	return b, nil
}

func (b *Board) collectShip(start Coord, seen *[Size][Size]bool) []Coord {
	var group []Coord
	stack := []Coord{start}
	seen[start.Row][start.Col] = true
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group = append(group, c)
		for _, n := range neighbours(c) {
			if !seen[n.Row][n.Col] && isShipCell(b.grid[n.Row][n.Col]) {
				seen[n.Row][n.Col] = true
				stack = append(stack, n)
			}
		}
	}
	return group
}

func isShipCell(c Cell) bool {
	return c == ShipCell || c == Hit
}

// neighbours returns the on-board cells around c, diagonals included.
func neighbours(c Coord) []Coord {
	out := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if n.InBounds() {
				out = append(out, n)
			}
		}
	}
	return out
}
