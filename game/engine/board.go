package engine

import "fmt"

// axis is the coordinate a player advances along
type axis int

const (
	axisY axis = iota
	axisX
)

// edgeRule places a player's entry and exit edges. Both edges are lines
// perpendicular to the advance axis; advancing means the axis coordinate
// strictly decreases from start toward escape.
type edgeRule struct {
	axis   axis
	start  int
	escape int
}

func (r edgeRule) along(c Cell) int {
	if r.axis == axisY {
		return c.Y
	}
	return c.X
}

func (r edgeRule) across(c Cell) int {
	if r.axis == axisY {
		return c.X
	}
	return c.Y
}

func (r edgeRule) cellAt(line, offset int) Cell {
	if r.axis == axisY {
		return Cell{X: offset, Y: line}
	}
	return Cell{X: line, Y: offset}
}

// Board is the square grid and its occupancy. Only the engine's combined
// mutation routines write occupancy, so every occupied cell always matches
// exactly one on-board token position.
type Board struct {
	size  int
	cells []*Token
}

// NewBoard creates an empty size x size board
func NewBoard(size int) (*Board, error) {
	if size < MinGridSize || size > MaxGridSize {
		return nil, fmt.Errorf("grid size must be between %d and %d, got %d", MinGridSize, MaxGridSize, size)
	}
	return &Board{
		size:  size,
		cells: make([]*Token, size*size),
	}, nil
}

// Size returns the grid dimension N
func (b *Board) Size() int {
	return b.size
}

// IsValid reports whether both coordinates lie in [0, N)
func (b *Board) IsValid(c Cell) bool {
	return c.X >= 0 && c.X < b.size && c.Y >= 0 && c.Y < b.size
}

// IsEmpty is false for invalid cells
func (b *Board) IsEmpty(c Cell) bool {
	if !b.IsValid(c) {
		return false
	}
	return b.cells[b.index(c)] == nil
}

// TokenAt returns the occupying token, or nil
func (b *Board) TokenAt(c Cell) *Token {
	if !b.IsValid(c) {
		return nil
	}
	return b.cells[b.index(c)]
}

// Neighbors returns the orthogonally adjacent valid cells in the order
// up, down, left, right.
func (b *Board) Neighbors(c Cell) []Cell {
	if !b.IsValid(c) {
		return nil
	}
	candidates := [4]Cell{
		{X: c.X, Y: c.Y - 1},
		{X: c.X, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y},
		{X: c.X + 1, Y: c.Y},
	}
	neighbors := make([]Cell, 0, 4)
	for _, n := range candidates {
		if b.IsValid(n) {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// EmptyNeighbors returns the subset of Neighbors that is unoccupied
func (b *Board) EmptyNeighbors(c Cell) []Cell {
	var empty []Cell
	for _, n := range b.Neighbors(c) {
		if b.IsEmpty(n) {
			empty = append(empty, n)
		}
	}
	return empty
}

// IsStartingCell reports whether c is on the player's entry edge, corners excluded
func (b *Board) IsStartingCell(c Cell, player PlayerID) bool {
	rule, ok := b.rule(player)
	if !ok || !b.IsValid(c) {
		return false
	}
	return rule.along(c) == rule.start && b.inCentre(rule.across(c))
}

// IsEscapeCell reports whether c is on the player's exit edge, corners excluded
func (b *Board) IsEscapeCell(c Cell, player PlayerID) bool {
	rule, ok := b.rule(player)
	if !ok || !b.IsValid(c) {
		return false
	}
	return rule.along(c) == rule.escape && b.inCentre(rule.across(c))
}

// AllStartingCells enumerates the player's starting cells in edge order
func (b *Board) AllStartingCells(player PlayerID) []Cell {
	rule, ok := b.rule(player)
	if !ok {
		return nil
	}
	return b.edgeCells(rule, rule.start)
}

// AllEscapeCells enumerates the player's escape cells in edge order
func (b *Board) AllEscapeCells(player PlayerID) []Cell {
	rule, ok := b.rule(player)
	if !ok {
		return nil
	}
	return b.edgeCells(rule, rule.escape)
}

// OccupiedCells lists occupied cells in row-major order
func (b *Board) OccupiedCells() []Cell {
	var occupied []Cell
	for i, t := range b.cells {
		if t != nil {
			occupied = append(occupied, Cell{X: i % b.size, Y: i / b.size})
		}
	}
	return occupied
}

// place records occupancy only. Callers must set the token position in the
// same routine.
func (b *Board) place(t *Token, c Cell) bool {
	if t == nil || !b.IsEmpty(c) {
		return false
	}
	b.cells[b.index(c)] = t
	return true
}

func (b *Board) remove(c Cell) *Token {
	if !b.IsValid(c) {
		return nil
	}
	i := b.index(c)
	t := b.cells[i]
	b.cells[i] = nil
	return t
}

func (b *Board) moveOccupancy(from, to Cell) bool {
	if b.TokenAt(from) == nil || !b.IsEmpty(to) {
		return false
	}
	b.cells[b.index(to)] = b.cells[b.index(from)]
	b.cells[b.index(from)] = nil
	return true
}

func (b *Board) clear() {
	for i := range b.cells {
		b.cells[i] = nil
	}
}

func (b *Board) index(c Cell) int {
	return c.Y*b.size + c.X
}

func (b *Board) inCentre(offset int) bool {
	return offset >= 1 && offset <= b.size-2
}

func (b *Board) edgeCells(rule edgeRule, line int) []Cell {
	cells := make([]Cell, 0, b.size-2)
	for offset := 1; offset <= b.size-2; offset++ {
		cells = append(cells, rule.cellAt(line, offset))
	}
	return cells
}

// rule returns the edge layout for a player. Player 1 enters at the bottom
// row and leaves through the top; Player 2 enters at the right column and
// leaves through the left.
func (b *Board) rule(player PlayerID) (edgeRule, bool) {
	switch player {
	case PlayerOne:
		return edgeRule{axis: axisY, start: b.size - 1, escape: 0}, true
	case PlayerTwo:
		return edgeRule{axis: axisX, start: b.size - 1, escape: 0}, true
	default:
		return edgeRule{}, false
	}
}
