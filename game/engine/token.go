package engine

// Token is one player-owned piece. Exactly one of unplaced, on-board and
// escaped holds at any time.
type Token struct {
	owner   *Player
	id      int
	pos     Cell
	placed  bool
	escaped bool
}

func newToken(owner *Player, id int) *Token {
	return &Token{owner: owner, id: id}
}

// Owner returns the player that owns the token
func (t *Token) Owner() *Player {
	return t.owner
}

// ID returns the token's stable index within its owner's roster
func (t *Token) ID() int {
	return t.id
}

// Position returns the current cell, or false when the token is off the board
func (t *Token) Position() (Cell, bool) {
	if !t.placed {
		return Cell{}, false
	}
	return t.pos, true
}

// State returns the lifecycle stage
func (t *Token) State() TokenState {
	switch {
	case t.escaped:
		return Escaped
	case t.placed:
		return OnBoard
	default:
		return Unplaced
	}
}

// IsOnBoard reports whether the token has a position and has not escaped
func (t *Token) IsOnBoard() bool {
	return t.placed && !t.escaped
}

// IsEscaped reports whether the token has left the board for good
func (t *Token) IsEscaped() bool {
	return t.escaped
}

// IsUnplaced reports whether the token has not entered the board yet
func (t *Token) IsUnplaced() bool {
	return !t.placed && !t.escaped
}

// LegalDestinations returns the empty neighbours that move the token
// strictly toward its owner's escape edge. Lateral and backward neighbours
// never qualify, so at most one cell is returned.
func (t *Token) LegalDestinations(b *Board) []Cell {
	if !t.IsOnBoard() {
		return nil
	}
	rule, ok := b.rule(t.owner.id)
	if !ok {
		return nil
	}
	var legal []Cell
	for _, n := range b.EmptyNeighbors(t.pos) {
		if rule.along(n) < rule.along(t.pos) {
			legal = append(legal, n)
		}
	}
	return legal
}

// IsBlocked reports whether the token has no legal destination
func (t *Token) IsBlocked(b *Board) bool {
	return len(t.LegalDestinations(b)) == 0
}

// CanMoveTo reports whether c is one of the token's legal destinations
func (t *Token) CanMoveTo(b *Board, c Cell) bool {
	for _, d := range t.LegalDestinations(b) {
		if d == c {
			return true
		}
	}
	return false
}

// IsAdjacentTo reports orthogonal adjacency to the token's position,
// ignoring occupancy.
func (t *Token) IsAdjacentTo(c Cell) bool {
	if !t.IsOnBoard() {
		return false
	}
	dx, dy := abs(t.pos.X-c.X), abs(t.pos.Y-c.Y)
	return (dx == 1 && dy == 0) || (dx == 0 && dy == 1)
}

// WouldEscapeAt reports whether c is one of the owner's escape cells
func (t *Token) WouldEscapeAt(b *Board, c Cell) bool {
	return b.IsEscapeCell(c, t.owner.id)
}

// setPosition assigns a cell and clears the escaped flag
func (t *Token) setPosition(c Cell) {
	t.pos = c
	t.placed = true
	t.escaped = false
}

// markEscaped sets the escaped flag and clears the position
func (t *Token) markEscaped() {
	t.escaped = true
	t.placed = false
	t.pos = Cell{}
}

func (t *Token) reset() {
	t.pos = Cell{}
	t.placed = false
	t.escaped = false
}

// moveTo moves occupancy and position together. Reaching an escape cell
// lifts the token off the board.
func (t *Token) moveTo(b *Board, c Cell) bool {
	if !t.CanMoveTo(b, c) {
		return false
	}
	if !b.moveOccupancy(t.pos, c) {
		return false
	}
	t.setPosition(c)
	if b.IsEscapeCell(c, t.owner.id) {
		b.remove(c)
		t.markEscaped()
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
