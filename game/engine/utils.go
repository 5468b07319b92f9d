package engine

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to Cell) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// StepsToEscape returns how many forward moves the token needs to leave the
// board, ignoring blockers. It returns -1 for tokens off the board.
func StepsToEscape(b *Board, t *Token) int {
	if !t.IsOnBoard() {
		return -1
	}
	rule, ok := b.rule(t.owner.id)
	if !ok {
		return -1
	}
	return rule.along(t.pos) - rule.escape
}

// LanePath lists the cells a token placed on the given starting cell walks
// through, starting cell first and escape cell last. It returns nil when
// start is not a starting cell of the player.
func LanePath(b *Board, player PlayerID, start Cell) []Cell {
	if !b.IsStartingCell(start, player) {
		return nil
	}
	rule, _ := b.rule(player)
	lane := rule.across(start)
	path := make([]Cell, 0, b.size)
	for line := rule.start; line >= rule.escape; line-- {
		path = append(path, rule.cellAt(line, lane))
	}
	return path
}

// CrossingCells lists the cells both players' lanes pass through, in
// row-major order. These are the only cells where tokens can block each
// other's lanes.
func CrossingCells(b *Board) []Cell {
	var cells []Cell
	for y := 1; y <= b.size-2; y++ {
		for x := 1; x <= b.size-2; x++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

// CountBlocked counts the player's on-board tokens without a legal move
func CountBlocked(b *Board, p *Player) int {
	count := 0
	for _, t := range p.OnBoard() {
		if t.IsBlocked(b) {
			count++
		}
	}
	return count
}

// TotalStepsToEscape sums the remaining forward moves of a player's roster.
// Unplaced tokens count the full lane length.
func TotalStepsToEscape(b *Board, p *Player) int {
	total := 0
	for _, t := range p.tokens {
		switch t.State() {
		case Unplaced:
			total += b.size - 1
		case OnBoard:
			total += StepsToEscape(b, t)
		}
	}
	return total
}
