// apps/go-server/internal/game/types.go
//
// Core type definitions for the match-3 engine.
// Defines:
//   - Kind: the token occupying a cell (1..K, or Empty mid-resolution).
//   - Board: a row-major grid of kinds.
//   - Cell: a (row, col) coordinate.
//   - Step: a notification emitted while a swap cascades.

package game

// Kind is the token variant held by a cell.
// Values 1..Kinds are real tokens; Empty only exists between Remove and Refill.
type Kind int

// Empty marks a cell cleared by Remove and not yet refilled.
const Empty Kind = 0

const (
	DefaultSize   = 8  // board is DefaultSize x DefaultSize
	DefaultKinds  = 5  // token kinds are 1..DefaultKinds
	PointsPerCell = 10 // score per matched cell per cascade step
)

// Cell identifies a board position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board is indexed as b[row][col]. Row 0 is the top.
type Board [][]Kind

// NewEmptyBoard allocates a rows x cols board filled with Empty.
func NewEmptyBoard(rows, cols int) Board {
	b := make(Board, rows)
	for r := range b {
		b[r] = make([]Kind, cols)
	}
	return b
}

// Rows returns the number of rows.
func (b Board) Rows() int { return len(b) }

// Cols returns the number of columns (0 for an empty board).
func (b Board) Cols() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// InBounds reports whether c addresses a cell of b.
func (b Board) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < b.Rows() && c.Col >= 0 && c.Col < b.Cols()
}

// At returns the kind at c.
func (b Board) At(c Cell) Kind { return b[c.Row][c.Col] }

// Clone returns a deep copy; the result shares no rows with b.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for r, row := range b {
		out[r] = append([]Kind(nil), row...)
	}
	return out
}

// Equal reports whether both boards have the same shape and contents.
func (b Board) Equal(o Board) bool {
	if len(b) != len(o) {
		return false
	}
	for r := range b {
		if len(b[r]) != len(o[r]) {
			return false
		}
		for c := range b[r] {
			if b[r][c] != o[r][c] {
				return false
			}
		}
	}
	return true
}

// Source is the randomness the engine draws token kinds from.
// *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// StepKind names the phase a Step reports.
type StepKind string

const (
	StepSwap    StepKind = "swap"    // a valid swap was committed
	StepRemove  StepKind = "remove"  // matched cells were cleared
	StepGravity StepKind = "gravity" // columns were compacted
	StepRefill  StepKind = "refill"  // empty cells were refilled
)

// Step is handed to an Observer between engine phases. Board and Matches are
// copies owned by the receiver.
type Step struct {
	Kind    StepKind `json:"kind"`
	Cascade int      `json:"cascade"` // 1-based cascade iteration, 0 for StepSwap
	Board   Board    `json:"board"`
	Matches []Cell   `json:"matches,omitempty"`
	Score   int      `json:"score"`
}

// Observer receives steps synchronously. Renderers use it to pace animation;
// the engine's result does not depend on it.
type Observer func(Step)

// Snapshot is what a renderer needs to draw the game.
type Snapshot struct {
	ID       string `json:"gameId"`
	Board    Board  `json:"board"`
	Selected *Cell  `json:"selected"`
	Score    int    `json:"score"`
}
