package engine

// Player owns a fixed roster of RosterSize tokens. The roster is created
// once and never replaced; reset rewinds the tokens in place.
type Player struct {
	id     PlayerID
	name   string
	color  Color
	tokens [RosterSize]*Token
}

// NewPlayer creates a player with a full roster of unplaced tokens
func NewPlayer(id PlayerID, name string, color Color) *Player {
	p := &Player{id: id, name: name, color: color}
	for i := range p.tokens {
		p.tokens[i] = newToken(p, i)
	}
	return p
}

// ID returns the seat identifier
func (p *Player) ID() PlayerID {
	return p.id
}

// Name returns the display name
func (p *Player) Name() string {
	return p.name
}

// Color returns the display colour
func (p *Player) Color() Color {
	return p.color
}

// Tokens returns the roster ordered by id
func (p *Player) Tokens() []*Token {
	out := make([]*Token, RosterSize)
	copy(out, p.tokens[:])
	return out
}

// Token returns the token with the given id, or nil
func (p *Player) Token(id int) *Token {
	if id < 0 || id >= RosterSize {
		return nil
	}
	return p.tokens[id]
}

// OnBoard returns the tokens currently on the board
func (p *Player) OnBoard() []*Token {
	return p.filter(OnBoard)
}

// Escaped returns the tokens that have left the board
func (p *Player) Escaped() []*Token {
	return p.filter(Escaped)
}

// Unplaced returns the tokens that have not entered yet
func (p *Player) Unplaced() []*Token {
	return p.filter(Unplaced)
}

// NextUnplaced returns the lowest-id unplaced token, or nil
func (p *Player) NextUnplaced() *Token {
	for _, t := range p.tokens {
		if t.IsUnplaced() {
			return t
		}
	}
	return nil
}

// HasWon reports whether the whole roster has escaped
func (p *Player) HasWon() bool {
	return len(p.Escaped()) == RosterSize
}

// CanMoveAny reports whether any on-board token has a legal destination
func (p *Player) CanMoveAny(b *Board) bool {
	for _, t := range p.tokens {
		if t.IsOnBoard() && !t.IsBlocked(b) {
			return true
		}
	}
	return false
}

// CanPlaceAny reports whether the player has an unplaced token and an
// empty starting cell to put it on.
func (p *Player) CanPlaceAny(b *Board) bool {
	if p.NextUnplaced() == nil {
		return false
	}
	for _, c := range b.AllStartingCells(p.id) {
		if b.IsEmpty(c) {
			return true
		}
	}
	return false
}

// TokenAt returns the owned on-board token standing on c, or nil
func (p *Player) TokenAt(c Cell) *Token {
	for _, t := range p.tokens {
		if pos, ok := t.Position(); ok && t.IsOnBoard() && pos == c {
			return t
		}
	}
	return nil
}

func (p *Player) filter(state TokenState) []*Token {
	var out []*Token
	for _, t := range p.tokens {
		if t.State() == state {
			out = append(out, t)
		}
	}
	return out
}
