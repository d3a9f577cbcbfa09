// apps/go-server/internal/game/detect.go
//
// Match detection.
// A run is a maximal line of three or more identical, non-empty kinds, found by
// scanning every row left to right and every column top to bottom. The match
// set is the union of all run members; a cell on both a horizontal and a
// vertical run is reported once.

package game

// minRun is the shortest line that counts as a match.
const minRun = 3

// FindMatches returns every cell that belongs to at least one run, in
// row-major order. It returns nil when the board is quiescent.
func FindMatches(b Board) []Cell {
	rows, cols := b.Rows(), b.Cols()
	hit := make([][]bool, rows)
	for r := range hit {
		hit[r] = make([]bool, cols)
	}

	// Rows.
	for r := 0; r < rows; r++ {
		start := 0
		for c := 1; c <= cols; c++ {
			if c < cols && b[r][c] == b[r][start] {
				continue
			}
			if c-start >= minRun && b[r][start] != Empty {
				for x := start; x < c; x++ {
					hit[r][x] = true
				}
			}
			start = c
		}
	}

	// Columns.
	for c := 0; c < cols; c++ {
		start := 0
		for r := 1; r <= rows; r++ {
			if r < rows && b[r][c] == b[start][c] {
				continue
			}
			if r-start >= minRun && b[start][c] != Empty {
				for y := start; y < r; y++ {
					hit[y][c] = true
				}
			}
			start = r
		}
	}

	var out []Cell
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if hit[r][c] {
				out = append(out, Cell{Row: r, Col: c})
			}
		}
	}
	return out
}
