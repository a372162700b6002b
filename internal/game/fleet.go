package game

import "fmt"

// FleetEntry asks for Count ships of length Size.
type FleetEntry struct {
	Count int
	Size  int
}

// Fleet is the multiset of ships a board must carry.
type Fleet []FleetEntry

// StandardFleet is four 1-cell, three 2-cell, two 3-cell and one 4-cell ship.
var StandardFleet = Fleet{
	{Count: 4, Size: 1},
	{Count: 3, Size: 2},
	{Count: 2, Size: 3},
	{Count: 1, Size: 4},
}

// Cells is the number of cells the whole fleet occupies.
func (f Fleet) Cells() int {
	total := 0
	for _, e := range f {
		total += e.Count * e.Size
	}
	return total
}

// Ships is the number of ships in the fleet.
func (f Fleet) Ships() int {
	total := 0
	for _, e := range f {
		total += e.Count
	}
	return total
}

// Validate rejects entries that can never be placed.
func (f Fleet) Validate() error {
	if len(f) == 0 {
		return fmt.Errorf("empty fleet")
	}
	for _, e := range f {
		if e.Count < 1 {
			return fmt.Errorf("fleet entry %+v: count must be positive", e)
		}
		if e.Size < 1 || e.Size > Size {
			return fmt.Errorf("fleet entry %+v: size must be between 1 and %d", e, Size)
		}
	}
	return nil
}
