// apps/go-server/internal/game/engine.go
//
// Core game engine for a single match-3 session.
// Responsibilities:
//   - Create new games on a DefaultSize x DefaultSize board with no runs.
//   - Run the tap state machine (NoSelection -> OneSelected -> swap attempt).
//   - Validate swaps (adjacency, must produce a match) without touching the live board.
//   - Cascade committed swaps to quiescence: detect -> score -> remove -> gravity -> refill.
//
// Notes:
//   - Invalid moves are silent: the board and score stay as they were.
//   - Out-of-range taps are rejected with ErrOutOfRange before any state changes.
//   - A Game is not safe for concurrent use; the session store serialises access.
package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"

	"github.com/google/uuid"
)

// ErrOutOfRange is returned by Tap for coordinates outside the board.
var ErrOutOfRange = errors.New("cell out of range")

// Game holds the state of one match-3 session.
type Game struct {
	ID       string // Unique game identifier (UUID).
	Board    Board  // Live board; quiescent whenever a call returns.
	Score    int    // 10 points per matched cell per cascade step.
	Selected *Cell  // First tap of a pending swap, nil if none.

	rng      Source
	observer Observer
}

// Option configures a Game at construction.
type Option func(*Game)

// WithSource draws every token from src.
func WithSource(src Source) Option {
	return func(g *Game) { g.rng = src }
}

// WithSeed makes the game fully deterministic for a given seed.
func WithSeed(seed int64) Option {
	return func(g *Game) { g.rng = seededRand(uint64(seed)) }
}

// WithObserver registers a hook called between engine phases.
func WithObserver(o Observer) Option {
	return func(g *Game) { g.observer = o }
}

// WithBoard starts the game from a copy of b instead of a generated board.
// The caller is responsible for b being quiescent and DefaultSize square.
func WithBoard(b Board) Option {
	return func(g *Game) { g.Board = b.Clone() }
}

// New constructs a game with a fresh board.
// Without WithSource/WithSeed the token stream is seeded from crypto/rand.
func New(opts ...Option) *Game {
	g := &Game{ID: uuid.NewString()}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = seededRand(cryptoSeed())
	}
	if g.Board == nil {
		g.Board = NewBoard(DefaultSize, DefaultKinds, g.rng)
	}
	return g
}

// NewGame replaces the board, zeroes the score and clears any selection.
func (g *Game) NewGame() {
	g.Board = NewBoard(DefaultSize, DefaultKinds, g.rng)
	g.Score = 0
	g.Selected = nil
}

// SetObserver replaces the step hook; nil disables it.
func (g *Game) SetObserver(o Observer) { g.observer = o }

// TapResult describes what a tap did.
type TapResult struct {
	Selected *Cell `json:"selected"` // selection after the tap
	Swapped  bool  `json:"swapped"`  // a swap committed on this tap
	Steps    int   `json:"steps"`    // cascade iterations run by that swap
}

// Tap feeds one cell tap into the selection state machine.
//
// With nothing selected the tapped cell becomes the selection. With a cell
// already selected the pair is handed to RequestSwap and the selection is
// cleared whatever the outcome. Tapping the same cell twice is a
// non-adjacent swap: rejected, with nothing left selected.
func (g *Game) Tap(row, col int) (TapResult, error) {
	c := Cell{Row: row, Col: col}
	if !g.Board.InBounds(c) {
		return TapResult{Selected: g.selection()}, ErrOutOfRange
	}
	if g.Selected == nil {
		g.Selected = &c
		return TapResult{Selected: g.selection()}, nil
	}
	from := *g.Selected
	g.Selected = nil
	steps, ok := g.Swap(from, c)
	return TapResult{Swapped: ok, Steps: steps}, nil
}

// RequestSwap exchanges the tokens at a and b if they are adjacent and the
// exchange creates at least one run, then cascades to quiescence.
// It reports whether the swap was committed; rejected swaps change nothing.
func (g *Game) RequestSwap(a, b Cell) bool {
	_, ok := g.Swap(a, b)
	return ok
}

// Swap is RequestSwap that also returns how many cascade iterations ran.
func (g *Game) Swap(a, b Cell) (int, bool) {
	if !g.Board.InBounds(a) || !g.Board.InBounds(b) || !Adjacent(a, b) {
		return 0, false
	}
	next := g.Board.Clone()
	next[a.Row][a.Col], next[b.Row][b.Col] = next[b.Row][b.Col], next[a.Row][a.Col]
	if len(FindMatches(next)) == 0 {
		return 0, false
	}
	g.Board = next
	g.notify(StepSwap, 0, nil)
	return g.cascade(), true
}

// cascade resolves the live board until FindMatches comes back empty and
// returns the number of iterations. There is no iteration cap: each pass
// refills from the random stream, and a quiescent board ends the loop.
func (g *Game) cascade() int {
	steps := 0
	for {
		matches := FindMatches(g.Board)
		if len(matches) == 0 {
			return steps
		}
		steps++
		g.Score += len(matches) * PointsPerCell

		g.Board = Remove(g.Board, matches)
		g.notify(StepRemove, steps, matches)
		g.Board = Gravity(g.Board)
		g.notify(StepGravity, steps, nil)
		g.Board = Refill(g.Board, DefaultKinds, g.rng)
		g.notify(StepRefill, steps, nil)
	}
}

func (g *Game) notify(kind StepKind, cascade int, matches []Cell) {
	if g.observer == nil {
		return
	}
	g.observer(Step{
		Kind:    kind,
		Cascade: cascade,
		Board:   g.Board.Clone(),
		Matches: append([]Cell(nil), matches...),
		Score:   g.Score,
	})
}

// Snapshot returns a copy of the renderer-visible state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		ID:       g.ID,
		Board:    g.Board.Clone(),
		Selected: g.selection(),
		Score:    g.Score,
	}
}

func (g *Game) selection() *Cell {
	if g.Selected == nil {
		return nil
	}
	c := *g.Selected
	return &c
}

// Adjacent reports whether a and b share an edge.
func Adjacent(a, b Cell) bool {
	dr, dc := abs(a.Row-b.Row), abs(a.Col-b.Col)
	return dr+dc == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// seededRand returns a PCG-backed generator for seed.
func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// cryptoSeed reads a seed from crypto/rand.
func cryptoSeed() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}
