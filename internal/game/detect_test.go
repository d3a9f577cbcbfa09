package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMatches(t *testing.T) {
	testCases := []struct {
		name  string
		board Board
		want  []Cell
	}{
		{
			name:  "horizontal run in second row only",
			board: Board{{1, 1, 2}, {2, 2, 2}},
			want:  []Cell{{1, 0}, {1, 1}, {1, 2}},
		},
		{
			name:  "no runs",
			board: Board{{1, 2, 1}, {2, 1, 2}, {1, 2, 1}},
			want:  nil,
		},
		{
			name:  "vertical run",
			board: Board{{1, 2}, {1, 3}, {1, 2}},
			want:  []Cell{{0, 0}, {1, 0}, {2, 0}},
		},
		{
			name:  "crossing runs share a cell once",
			board: Board{{1, 2, 3}, {1, 1, 1}, {1, 4, 5}},
			want:  []Cell{{0, 0}, {1, 0}, {1, 1}, {1, 2}, {2, 0}},
		},
		{
			name:  "run of five counts every cell",
			board: Board{{4, 4, 4, 4, 4}},
			want:  []Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}},
		},
		{
			name:  "run touching the last column",
			board: Board{{2, 1, 1, 1}},
			want:  []Cell{{0, 1}, {0, 2}, {0, 3}},
		},
		{
			name:  "pairs are not runs",
			board: Board{{3, 3, 1, 3, 3}},
			want:  nil,
		},
		{
			name:  "empty cells never match",
			board: Board{{Empty, Empty, Empty}, {Empty, Empty, Empty}, {Empty, Empty, Empty}},
			want:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FindMatches(tc.board))
		})
	}
}

func TestFindMatchesDoesNotModifyBoard(t *testing.T) {
	b := Board{{1, 1, 1}, {2, 3, 2}, {3, 2, 3}}
	before := b.Clone()

	first := FindMatches(b)
	second := FindMatches(b)

	require.True(t, b.Equal(before))
	assert.Equal(t, first, second)
}
