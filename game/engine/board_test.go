package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T, size int) *Board {
	t.Helper()
	b, err := NewBoard(size)
	require.NoError(t, err)
	return b
}

func TestNewBoardSizeLimits(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{size: 4, wantErr: true},
		{size: 5},
		{size: 7},
		{size: 25},
		{size: 26, wantErr: true},
	}

	for _, tt := range tests {
		b, err := NewBoard(tt.size)
		if tt.wantErr {
			assert.Error(t, err, "size %d", tt.size)
			continue
		}
		require.NoError(t, err, "size %d", tt.size)
		assert.Equal(t, tt.size, b.Size())
		assert.Empty(t, b.OccupiedCells())
	}
}

func TestBoardValidityAndEmptiness(t *testing.T) {
	b := newTestBoard(t, 7)

	assert.True(t, b.IsValid(Cell{X: 0, Y: 0}))
	assert.True(t, b.IsValid(Cell{X: 6, Y: 6}))
	assert.False(t, b.IsValid(Cell{X: -1, Y: 0}))
	assert.False(t, b.IsValid(Cell{X: 0, Y: 7}))

	assert.True(t, b.IsEmpty(Cell{X: 3, Y: 3}))
	assert.False(t, b.IsEmpty(Cell{X: 7, Y: 3}), "invalid cells are never empty")
	assert.Nil(t, b.TokenAt(Cell{X: 7, Y: 3}))
}

func TestBoardNeighbors(t *testing.T) {
	b := newTestBoard(t, 7)

	assert.Equal(t, []Cell{{X: 3, Y: 2}, {X: 3, Y: 4}, {X: 2, Y: 3}, {X: 4, Y: 3}}, b.Neighbors(Cell{X: 3, Y: 3}))
	assert.Equal(t, []Cell{{X: 0, Y: 1}, {X: 1, Y: 0}}, b.Neighbors(Cell{X: 0, Y: 0}))
	assert.Len(t, b.Neighbors(Cell{X: 3, Y: 0}), 3)
	assert.Len(t, b.Neighbors(Cell{X: 6, Y: 3}), 3)
	assert.Len(t, b.Neighbors(Cell{X: 6, Y: 6}), 2)
	assert.Nil(t, b.Neighbors(Cell{X: 9, Y: 9}))
}

func TestBoardEmptyNeighbors(t *testing.T) {
	b := newTestBoard(t, 7)
	p := NewPlayer(PlayerOne, "p1", Color{})

	require.True(t, b.place(p.Token(0), Cell{X: 3, Y: 2}))
	require.True(t, b.place(p.Token(1), Cell{X: 2, Y: 3}))

	assert.Equal(t, []Cell{{X: 3, Y: 4}, {X: 4, Y: 3}}, b.EmptyNeighbors(Cell{X: 3, Y: 3}))
}

func TestBoardEdgeClassification(t *testing.T) {
	b := newTestBoard(t, 7)

	assert.Equal(t,
		[]Cell{{X: 1, Y: 6}, {X: 2, Y: 6}, {X: 3, Y: 6}, {X: 4, Y: 6}, {X: 5, Y: 6}},
		b.AllStartingCells(PlayerOne))
	assert.Equal(t,
		[]Cell{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 4, Y: 0}, {X: 5, Y: 0}},
		b.AllEscapeCells(PlayerOne))
	assert.Equal(t,
		[]Cell{{X: 6, Y: 1}, {X: 6, Y: 2}, {X: 6, Y: 3}, {X: 6, Y: 4}, {X: 6, Y: 5}},
		b.AllStartingCells(PlayerTwo))
	assert.Equal(t,
		[]Cell{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 3}, {X: 0, Y: 4}, {X: 0, Y: 5}},
		b.AllEscapeCells(PlayerTwo))

	// corners belong to nobody
	for _, corner := range []Cell{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 0, Y: 6}, {X: 6, Y: 6}} {
		for _, id := range []PlayerID{PlayerOne, PlayerTwo} {
			assert.False(t, b.IsStartingCell(corner, id), "corner %s start for %d", corner, id)
			assert.False(t, b.IsEscapeCell(corner, id), "corner %s escape for %d", corner, id)
		}
	}

	assert.False(t, b.IsStartingCell(Cell{X: 3, Y: 6}, PlayerTwo))
	assert.False(t, b.IsEscapeCell(Cell{X: 0, Y: 3}, PlayerOne))
	assert.Nil(t, b.AllStartingCells(NoPlayer))
}

func TestBoardEdgesScaleWithSize(t *testing.T) {
	for _, size := range []int{5, 9, 25} {
		b := newTestBoard(t, size)
		assert.Len(t, b.AllStartingCells(PlayerOne), size-2)
		assert.Len(t, b.AllEscapeCells(PlayerTwo), size-2)
		assert.True(t, b.IsStartingCell(Cell{X: size - 2, Y: size - 1}, PlayerOne))
		assert.False(t, b.IsStartingCell(Cell{X: size - 1, Y: size - 1}, PlayerOne))
	}
}

func TestBoardOccupancyPrimitives(t *testing.T) {
	b := newTestBoard(t, 5)
	p := NewPlayer(PlayerOne, "p1", Color{})
	tok := p.Token(0)
	other := p.Token(1)

	assert.False(t, b.place(nil, Cell{X: 1, Y: 1}))
	assert.False(t, b.place(tok, Cell{X: 5, Y: 1}))
	require.True(t, b.place(tok, Cell{X: 1, Y: 1}))
	assert.False(t, b.place(other, Cell{X: 1, Y: 1}), "occupied")
	assert.Same(t, tok, b.TokenAt(Cell{X: 1, Y: 1}))

	assert.False(t, b.moveOccupancy(Cell{X: 2, Y: 2}, Cell{X: 3, Y: 3}), "empty source")
	require.True(t, b.place(other, Cell{X: 2, Y: 1}))
	assert.False(t, b.moveOccupancy(Cell{X: 1, Y: 1}, Cell{X: 2, Y: 1}), "occupied destination")
	assert.False(t, b.moveOccupancy(Cell{X: 1, Y: 1}, Cell{X: -1, Y: 1}), "invalid destination")
	require.True(t, b.moveOccupancy(Cell{X: 1, Y: 1}, Cell{X: 1, Y: 0}))
	assert.True(t, b.IsEmpty(Cell{X: 1, Y: 1}))
	assert.Same(t, tok, b.TokenAt(Cell{X: 1, Y: 0}))

	assert.Nil(t, b.remove(Cell{X: 4, Y: 4}))
	assert.Nil(t, b.remove(Cell{X: 9, Y: 4}))
	assert.Same(t, other, b.remove(Cell{X: 2, Y: 1}))
	assert.Equal(t, []Cell{{X: 1, Y: 0}}, b.OccupiedCells())

	b.clear()
	assert.Empty(t, b.OccupiedCells())
}
