package engine

// CheckInvariants verifies the structural invariants: every roster is
// partitioned into exactly RosterSize tokens, board occupancy matches the
// on-board token positions one to one, and the terminal fields agree with
// the phase.
func (s *GameState) CheckInvariants() error {
	var ie InvariantError
	positions := make(map[Cell]*Token)

	for _, p := range s.players {
		unplaced, onBoard, escaped := len(p.Unplaced()), len(p.OnBoard()), len(p.Escaped())
		if unplaced+onBoard+escaped != RosterSize {
			ie.add("player %d partition %d+%d+%d != %d", p.id, unplaced, onBoard, escaped, RosterSize)
		}
		for i, t := range p.tokens {
			if t == nil {
				ie.add("player %d token %d missing", p.id, i)
				continue
			}
			if t.owner != p || t.id != i {
				ie.add("player %d slot %d holds foreign token %d", p.id, i, t.id)
			}
			if t.escaped && t.placed {
				ie.add("player %d token %d is escaped but holds %s", p.id, i, t.pos)
			}
			if !t.IsOnBoard() {
				continue
			}
			if other, dup := positions[t.pos]; dup {
				ie.add("tokens %d/%d and %d/%d share %s", other.owner.id, other.id, p.id, i, t.pos)
			}
			positions[t.pos] = t
			if !s.board.IsValid(t.pos) {
				ie.add("player %d token %d is off the grid at %s", p.id, i, t.pos)
			} else if s.board.TokenAt(t.pos) != t {
				ie.add("board does not record player %d token %d at %s", p.id, i, t.pos)
			}
		}
	}

	for _, c := range s.board.OccupiedCells() {
		if positions[c] != s.board.TokenAt(c) {
			ie.add("board holds an orphaned token at %s", c)
		}
	}

	if s.winner != nil && (s.phase != PhaseGameOver || !s.winner.HasWon()) {
		ie.add("winner %d recorded without a completed escape", s.winner.id)
	}
	if s.stalemate && (s.phase != PhaseGameOver || s.winner != nil) {
		ie.add("stalemate flag disagrees with phase or winner")
	}
	if s.phase == PhaseGameOver && s.winner == nil && !s.stalemate {
		ie.add("game over without winner or stalemate")
	}
	if s.selected != nil && (s.selected.owner != s.CurrentPlayer() || s.selected.IsEscaped()) {
		ie.add("selected token is not a live token of the current player")
	}

	if len(ie.Violations) > 0 {
		return &ie
	}
	return nil
}

// mustHoldInvariants panics with *InvariantError when a committed mutation
// broke the state.
func (s *GameState) mustHoldInvariants() {
	if err := s.CheckInvariants(); err != nil {
		panic(err)
	}
}
