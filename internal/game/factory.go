// apps/go-server/internal/game/factory.go
//
// Board factory.
// Builds the starting board for a game: every cell drawn from the token
// stream, redrawn while it would complete a run, so a fresh board is quiescent.

package game

// NewBoard fills a size x size board in row-major order, redrawing each cell
// until it does not complete a run of three with its two left or two upper
// neighbours. The result never contains a match.
func NewBoard(size, kinds int, rng Source) Board {
	b := NewEmptyBoard(size, size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			k := draw(kinds, rng)
			for completesRun(b, r, c, k) {
				k = draw(kinds, rng)
			}
			b[r][c] = k
		}
	}
	return b
}

// completesRun reports whether placing k at (r, c) makes three in a row with
// cells that are already placed.
func completesRun(b Board, r, c int, k Kind) bool {
	if c >= 2 && b[r][c-1] == k && b[r][c-2] == k {
		return true
	}
	if r >= 2 && b[r-1][c] == k && b[r-2][c] == k {
		return true
	}
	return false
}

// draw returns a uniform kind in [1, kinds].
func draw(kinds int, rng Source) Kind {
	return Kind(rng.IntN(kinds) + 1)
}
