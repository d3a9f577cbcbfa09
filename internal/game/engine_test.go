package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noMoveBoard has every kind at least five cells apart along each row and
// column, so no single adjacent swap can line up three.
func noMoveBoard() Board {
	b := NewEmptyBoard(DefaultSize, DefaultSize)
	for r := range b {
		for c := range b[r] {
			b[r][c] = Kind((c+2*r)%DefaultKinds + 1)
		}
	}
	return b
}

// swapReadyBoard is noMoveBoard with two 3s placed at (2,5) and (2,6), so
// swapping (2,3) <-> (2,4) moves a third 3 next to them.
func swapReadyBoard() Board {
	b := noMoveBoard()
	b[2][5] = 3
	b[2][6] = 3
	return b
}

// recorder collects every step the engine reports.
type recorder struct {
	steps []Step
}

func (r *recorder) observe(s Step) { r.steps = append(r.steps, s) }

func (r *recorder) kinds() []StepKind {
	out := make([]StepKind, 0, len(r.steps))
	for _, s := range r.steps {
		out = append(out, s.Kind)
	}
	return out
}

func TestNewBoardHasNoRuns(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		b := NewBoard(DefaultSize, DefaultKinds, seededRand(seed))
		require.Empty(t, FindMatches(b), "seed %d", seed)
		for r := range b {
			for c := range b[r] {
				require.GreaterOrEqual(t, int(b[r][c]), 1)
				require.LessOrEqual(t, int(b[r][c]), DefaultKinds)
			}
		}
	}
}

func TestNewGameBoardsAreQuiescent(t *testing.T) {
	g := New()
	for i := 0; i < 50; i++ {
		assert.Empty(t, FindMatches(g.Board))
		assert.Equal(t, DefaultSize, g.Board.Rows())
		assert.Equal(t, DefaultSize, g.Board.Cols())
		g.NewGame()
	}
}

func TestCompletesRun(t *testing.T) {
	b := Board{
		{1, 1, Empty},
		{2, 3, Empty},
		{2, Empty, Empty},
	}
	assert.True(t, completesRun(b, 0, 2, 1), "two left neighbours")
	assert.False(t, completesRun(b, 0, 2, 2))
	assert.False(t, completesRun(b, 2, 1, 3), "only one upper neighbour matches")

	b = Board{{1, 2}, {1, 2}, {Empty, Empty}}
	assert.True(t, completesRun(b, 2, 0, 1), "two upper neighbours")
	assert.True(t, completesRun(b, 2, 1, 2))
	assert.False(t, completesRun(b, 2, 0, 2))
}

func TestSeedIsDeterministic(t *testing.T) {
	a := New(WithSeed(42))
	b := New(WithSeed(42))
	assert.True(t, a.Board.Equal(b.Board))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAdjacent(t *testing.T) {
	testCases := []struct {
		a, b Cell
		want bool
	}{
		{Cell{0, 0}, Cell{0, 1}, true},
		{Cell{3, 3}, Cell{2, 3}, true},
		{Cell{3, 3}, Cell{3, 3}, false},
		{Cell{0, 0}, Cell{1, 1}, false},
		{Cell{0, 0}, Cell{0, 2}, false},
		{Cell{5, 1}, Cell{7, 1}, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Adjacent(tc.a, tc.b), "%v %v", tc.a, tc.b)
	}
}

func TestRequestSwapRejectsNonAdjacent(t *testing.T) {
	g := New(WithBoard(swapReadyBoard()), WithSeed(1))
	before := g.Board.Clone()

	pairs := [][2]Cell{
		{{2, 3}, {2, 5}},
		{{2, 3}, {3, 4}},
		{{2, 4}, {2, 4}},
		{{0, 0}, {7, 7}},
		{{-1, 0}, {0, 0}},
		{{7, 7}, {7, 8}},
	}
	for _, p := range pairs {
		assert.False(t, g.RequestSwap(p[0], p[1]), "%v", p)
		assert.True(t, g.Board.Equal(before), "%v", p)
		assert.Zero(t, g.Score)
	}
}

func TestInvalidSwapsLeaveBoardUnchanged(t *testing.T) {
	rec := &recorder{}
	g := New(WithBoard(noMoveBoard()), WithSeed(7), WithObserver(rec.observe))
	require.Empty(t, FindMatches(g.Board))
	before := g.Board.Clone()

	for r := 0; r < DefaultSize; r++ {
		for c := 0; c < DefaultSize; c++ {
			from := Cell{r, c}
			for _, to := range []Cell{{r, c + 1}, {r + 1, c}} {
				if !g.Board.InBounds(to) {
					continue
				}
				require.False(t, g.RequestSwap(from, to), "%v <-> %v", from, to)
				require.True(t, g.Board.Equal(before), "%v <-> %v", from, to)
			}
		}
	}
	assert.Zero(t, g.Score)
	assert.Empty(t, rec.steps)
}

func TestSwapCascadesToQuiescence(t *testing.T) {
	start := swapReadyBoard()
	require.Empty(t, FindMatches(start))

	rec := &recorder{}
	g := New(WithBoard(start), WithSeed(2024), WithObserver(rec.observe))

	require.True(t, g.RequestSwap(Cell{2, 3}, Cell{2, 4}))

	require.NotEmpty(t, rec.steps)
	swapStep := rec.steps[0]
	assert.Equal(t, StepSwap, swapStep.Kind)
	assert.Equal(t, Kind(3), swapStep.Board[2][4])
	assert.Equal(t, Kind(4), swapStep.Board[2][3])
	assert.Zero(t, swapStep.Score)

	firstRemove := rec.steps[1]
	assert.Equal(t, StepRemove, firstRemove.Kind)
	assert.Equal(t, []Cell{{2, 4}, {2, 5}, {2, 6}}, firstRemove.Matches)
	assert.Equal(t, 30, firstRemove.Score)

	assert.GreaterOrEqual(t, g.Score, 30)
	assert.Empty(t, FindMatches(g.Board))
	assert.Nil(t, g.Selected)
}

func TestCascadeStepOrderAndScoring(t *testing.T) {
	rec := &recorder{}
	g := New(WithBoard(swapReadyBoard()), WithSeed(99), WithObserver(rec.observe))
	require.True(t, g.RequestSwap(Cell{2, 4}, Cell{2, 3}))

	kinds := rec.kinds()
	require.Equal(t, StepSwap, kinds[0])
	require.Zero(t, (len(kinds)-1)%3)
	for i := 1; i < len(kinds); i += 3 {
		assert.Equal(t, []StepKind{StepRemove, StepGravity, StepRefill}, kinds[i:i+3])
	}

	score := 0
	for _, s := range rec.steps {
		require.GreaterOrEqual(t, s.Score, score, "score must not decrease")
		if s.Kind == StepRemove {
			assert.Equal(t, score+PointsPerCell*len(s.Matches), s.Score)
			for _, c := range s.Matches {
				assert.Equal(t, Empty, s.Board.At(c))
			}
		}
		if s.Kind == StepRefill {
			assert.NotContains(t, flatten(s.Board), Empty)
		}
		score = s.Score
	}
	assert.Equal(t, score, g.Score)
}

func TestRandomGamesStayConsistent(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		rec := &recorder{}
		g := New(WithSeed(seed), WithObserver(rec.observe))

		committed := 0
		for r := 0; r < DefaultSize && committed < 5; r++ {
			for c := 0; c+1 < DefaultSize && committed < 5; c++ {
				prev := g.Score
				if g.RequestSwap(Cell{r, c}, Cell{r, c + 1}) {
					committed++
					require.Greater(t, g.Score, prev)
				} else {
					require.Equal(t, prev, g.Score)
				}
				require.Empty(t, FindMatches(g.Board), "seed %d", seed)
			}
		}

		total := 0
		for _, s := range rec.steps {
			if s.Kind == StepRemove {
				total += PointsPerCell * len(s.Matches)
			}
		}
		assert.Equal(t, total, g.Score, "seed %d", seed)
	}
}

func TestTapSelectsThenSwaps(t *testing.T) {
	g := New(WithBoard(swapReadyBoard()), WithSeed(5))

	res, err := g.Tap(2, 3)
	require.NoError(t, err)
	assert.False(t, res.Swapped)
	assert.Equal(t, &Cell{2, 3}, res.Selected)
	assert.Equal(t, &Cell{2, 3}, g.Selected)

	res, err = g.Tap(2, 4)
	require.NoError(t, err)
	assert.True(t, res.Swapped)
	assert.GreaterOrEqual(t, res.Steps, 1)
	assert.Nil(t, res.Selected)
	assert.Nil(t, g.Selected)
	assert.GreaterOrEqual(t, g.Score, 30)
}

func TestTapSameCellTwiceClearsSelection(t *testing.T) {
	g := New(WithBoard(swapReadyBoard()), WithSeed(5))
	before := g.Board.Clone()

	_, err := g.Tap(4, 4)
	require.NoError(t, err)
	res, err := g.Tap(4, 4)
	require.NoError(t, err)

	assert.False(t, res.Swapped)
	assert.Nil(t, g.Selected)
	assert.True(t, g.Board.Equal(before))
}

func TestTapInvalidSwapClearsSelection(t *testing.T) {
	g := New(WithBoard(noMoveBoard()), WithSeed(5))
	before := g.Board.Clone()

	_, err := g.Tap(0, 0)
	require.NoError(t, err)
	res, err := g.Tap(0, 1)
	require.NoError(t, err)

	assert.False(t, res.Swapped)
	assert.Nil(t, g.Selected)
	assert.True(t, g.Board.Equal(before))
	assert.Zero(t, g.Score)
}

func TestTapOutOfRange(t *testing.T) {
	g := New(WithSeed(5))
	before := g.Board.Clone()

	_, err := g.Tap(1, 1)
	require.NoError(t, err)

	for _, c := range []Cell{{-1, 0}, {0, -1}, {DefaultSize, 0}, {0, DefaultSize}} {
		res, err := g.Tap(c.Row, c.Col)
		require.ErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, &Cell{1, 1}, res.Selected)
	}
	assert.Equal(t, &Cell{1, 1}, g.Selected)
	assert.True(t, g.Board.Equal(before))
}

func TestNewGameResets(t *testing.T) {
	g := New(WithBoard(swapReadyBoard()), WithSeed(8))
	require.True(t, g.RequestSwap(Cell{2, 3}, Cell{2, 4}))
	_, err := g.Tap(0, 0)
	require.NoError(t, err)
	require.Positive(t, g.Score)

	g.NewGame()

	assert.Zero(t, g.Score)
	assert.Nil(t, g.Selected)
	assert.Empty(t, FindMatches(g.Board))
}

func TestObserverCannotCorruptBoard(t *testing.T) {
	g := New(WithBoard(swapReadyBoard()), WithSeed(11))
	g.SetObserver(func(s Step) {
		for r := range s.Board {
			for c := range s.Board[r] {
				s.Board[r][c] = 99
			}
		}
	})
	require.True(t, g.RequestSwap(Cell{2, 3}, Cell{2, 4}))
	assert.NotContains(t, flatten(g.Board), Kind(99))
}

func TestSnapshotIsACopy(t *testing.T) {
	g := New(WithSeed(3))
	_, err := g.Tap(0, 0)
	require.NoError(t, err)

	snap := g.Snapshot()
	snap.Board[0][0] = 99
	snap.Selected.Row = 5

	assert.NotEqual(t, Kind(99), g.Board[0][0])
	assert.Equal(t, 0, g.Selected.Row)
	assert.Equal(t, g.ID, snap.ID)
}

func flatten(b Board) []Kind {
	var out []Kind
	for _, row := range b {
		out = append(out, row...)
	}
	return out
}
