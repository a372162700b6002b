package game

// Ship is a straight run of cells plus the subset of them that has been hit.
type Ship struct {
	cells []Coord
	hits  map[Coord]struct{}
}

// NewShip creates an unhit ship occupying cells.
func NewShip(cells []Coord) *Ship {
	return &Ship{
		cells: append([]Coord(nil), cells...),
		hits:  make(map[Coord]struct{}, len(cells)),
	}
}

// Cells returns a copy of the occupied cells in placement order.
func (s *Ship) Cells() []Coord {
	return append([]Coord(nil), s.cells...)
}

// Size is the number of cells the ship occupies.
func (s *Ship) Size() int {
	return len(s.cells)
}

// Hits returns how many distinct cells of the ship were hit.
func (s *Ship) Hits() int {
	return len(s.hits)
}

// Sunk reports whether every cell of the ship has been hit.
func (s *Ship) Sunk() bool {
	return len(s.hits) == len(s.cells)
}

// Contains reports whether c is one of the ship's cells.
func (s *Ship) Contains(c Coord) bool {
	for _, cell := range s.cells {
		if cell == c {
			return true
		}
	}
	return false
}

func (s *Ship) hit(c Coord) bool {
	if !s.Contains(c) {
		return false
	}
	s.hits[c] = struct{}{}
	return true
}
