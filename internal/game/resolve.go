// apps/go-server/internal/game/resolve.go
//
// Resolver pipeline: Remove -> Gravity -> Refill.
// Each stage takes a board and returns a new one; inputs are never modified.

package game

// Remove returns a copy of b with every cell in matched set to Empty.
func Remove(b Board, matched []Cell) Board {
	out := b.Clone()
	for _, c := range matched {
		out[c.Row][c.Col] = Empty
	}
	return out
}

// Gravity returns a copy of b where, in every column, non-empty cells have
// fallen toward the bottom row in their original order. Empty cells end up
// on top. Columns never exchange cells.
func Gravity(b Board) Board {
	rows, cols := b.Rows(), b.Cols()
	out := NewEmptyBoard(rows, cols)
	for c := 0; c < cols; c++ {
		dst := rows - 1
		for r := rows - 1; r >= 0; r-- {
			if b[r][c] != Empty {
				out[dst][c] = b[r][c]
				dst--
			}
		}
	}
	return out
}

// Refill returns a copy of b with every Empty cell replaced by a uniform draw
// from [1, kinds]. Unlike NewBoard it does not avoid runs; the next detection
// pass picks them up as a further cascade.
func Refill(b Board, kinds int, rng Source) Board {
	out := b.Clone()
	for r := range out {
		for c := range out[r] {
			if out[r][c] == Empty {
				out[r][c] = draw(kinds, rng)
			}
		}
	}
	return out
}
