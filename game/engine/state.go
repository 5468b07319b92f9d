package engine

import "fmt"

// Rules holds options fixed when a game is created
type Rules struct {
	// PlacementAvoidsSkip lets a player with an unplaced token and an empty
	// starting cell keep the turn even when no on-board token can move.
	PlacementAvoidsSkip bool `json:"placement_avoids_skip"`
}

// PlayerInfo carries the cosmetic attributes of a seat
type PlayerInfo struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// DefaultPlayers returns the stock names and colours
func DefaultPlayers() [PlayerCount]PlayerInfo {
	return [PlayerCount]PlayerInfo{
		{Name: "Player 1", Color: Color{R: 0, G: 102, B: 204}},
		{Name: "Player 2", Color: Color{R: 204, G: 0, B: 0}},
	}
}

// GameState owns the board and both players and runs the turn machine.
// Every mutating action either commits completely, including the turn
// advance it triggers, or changes nothing.
type GameState struct {
	board   *Board
	players [PlayerCount]*Player
	rules   Rules

	current       int
	phase         Phase
	winner        *Player
	stalemate     bool
	turnSkipped   bool
	skippedPlayer PlayerID
	selected      *Token
}

// NewGameState creates a game in the Active phase with Player 1 to act
func NewGameState(size int, rules Rules, info [PlayerCount]PlayerInfo) (*GameState, error) {
	board, err := NewBoard(size)
	if err != nil {
		return nil, err
	}
	s := &GameState{board: board, rules: rules}
	for i := range s.players {
		s.players[i] = NewPlayer(PlayerID(i+1), info[i].Name, info[i].Color)
	}
	return s, nil
}

// Board returns the board
func (s *GameState) Board() *Board {
	return s.board
}

// Rules returns the rule options
func (s *GameState) Rules() Rules {
	return s.rules
}

// Players returns both players in seat order
func (s *GameState) Players() []*Player {
	return []*Player{s.players[0], s.players[1]}
}

// Player returns the player with the given id, or nil
func (s *GameState) Player(id PlayerID) *Player {
	if !id.Valid() {
		return nil
	}
	return s.players[int(id)-1]
}

// CurrentPlayer returns the player whose turn it is
func (s *GameState) CurrentPlayer() *Player {
	return s.players[s.current]
}

// OtherPlayer returns the player waiting for their turn
func (s *GameState) OtherPlayer() *Player {
	return s.players[(s.current+1)%PlayerCount]
}

func (s *GameState) Phase() Phase {
	return s.phase
}

func (s *GameState) IsGameOver() bool {
	return s.phase == PhaseGameOver
}

// Winner is nil while the game runs and after a stalemate
func (s *GameState) Winner() *Player {
	return s.winner
}

func (s *GameState) IsStalemate() bool {
	return s.stalemate
}

// TurnSkipped reports whether the last turn advance passed over a player
func (s *GameState) TurnSkipped() bool {
	return s.turnSkipped
}

// SkippedPlayer returns the last player passed over, or NoPlayer
func (s *GameState) SkippedPlayer() PlayerID {
	return s.skippedPlayer
}

// SelectedToken returns the advisory focus, or nil
func (s *GameState) SelectedToken() *Token {
	return s.selected
}

// CheckVictory returns the first player whose whole roster has escaped.
// It does not commit the game over transition.
func (s *GameState) CheckVictory() *Player {
	for _, p := range s.players {
		if p.HasWon() {
			return p
		}
	}
	return nil
}

// CheckPlace explains why PlaceToken would reject the request, or returns nil
func (s *GameState) CheckPlace(t *Token, c Cell) error {
	if err := s.checkTurn(t); err != nil {
		return err
	}
	switch {
	case t.IsEscaped():
		return ErrTokenEscaped
	case t.IsOnBoard():
		return ErrTokenAlreadyPlaced
	case !s.board.IsValid(c):
		return ErrOutOfBounds
	case !s.board.IsStartingCell(c, t.owner.id):
		return ErrNotStartingCell
	case !s.board.IsEmpty(c):
		return ErrCellOccupied
	}
	return nil
}

// PlaceToken puts an unplaced token on one of its owner's starting cells
func (s *GameState) PlaceToken(t *Token, c Cell) bool {
	if s.CheckPlace(t, c) != nil {
		return false
	}
	s.put(t, c)
	s.advanceTurn()
	s.mustHoldInvariants()
	return true
}

// CheckMove explains why MoveToken would reject the request, or returns nil
func (s *GameState) CheckMove(t *Token, c Cell) error {
	if err := s.checkTurn(t); err != nil {
		return err
	}
	switch {
	case t.IsEscaped():
		return ErrTokenEscaped
	case !t.IsOnBoard():
		return ErrTokenNotOnBoard
	case !s.board.IsValid(c):
		return ErrOutOfBounds
	case !s.board.IsEmpty(c):
		return ErrCellOccupied
	case !t.CanMoveTo(s.board, c):
		return ErrIllegalDestination
	}
	return nil
}

// MoveToken advances an on-board token to one of its legal destinations.
// Landing on an escape cell lifts the token off the board.
func (s *GameState) MoveToken(t *Token, c Cell) bool {
	if s.CheckMove(t, c) != nil {
		return false
	}
	if !t.moveTo(s.board, c) {
		return false
	}
	s.advanceTurn()
	s.mustHoldInvariants()
	return true
}

// CheckEscape explains why EscapeToken would reject the request, or returns nil
func (s *GameState) CheckEscape(t *Token) error {
	if err := s.checkTurn(t); err != nil {
		return err
	}
	switch {
	case t.IsEscaped():
		return ErrTokenEscaped
	case !t.IsOnBoard():
		return ErrTokenNotOnBoard
	case !s.board.IsEscapeCell(t.pos, t.owner.id):
		return ErrNotEscapeCell
	}
	return nil
}

// EscapeToken confirms the exit of a token already standing on an escape cell
func (s *GameState) EscapeToken(t *Token) bool {
	if s.CheckEscape(t) != nil {
		return false
	}
	s.board.remove(t.pos)
	t.markEscaped()
	s.advanceTurn()
	s.mustHoldInvariants()
	return true
}

// SwitchTurn runs the turn advance on its own. It returns false and changes
// nothing once the game is over.
func (s *GameState) SwitchTurn() bool {
	if !s.advanceTurn() {
		return false
	}
	s.mustHoldInvariants()
	return true
}

// CheckSelect explains why SelectToken would reject the token, or returns nil
func (s *GameState) CheckSelect(t *Token) error {
	if err := s.checkTurn(t); err != nil {
		return err
	}
	if t.IsEscaped() {
		return ErrNotSelectable
	}
	return nil
}

// SelectToken records advisory focus on a current player's token
func (s *GameState) SelectToken(t *Token) bool {
	if s.CheckSelect(t) != nil {
		return false
	}
	s.selected = t
	return true
}

func (s *GameState) ClearSelection() {
	s.selected = nil
}

// Reset returns every token to its roster unplaced and restarts the game
// with Player 1 to act. Board, players and tokens keep their identity.
func (s *GameState) Reset() {
	s.board.clear()
	for _, p := range s.players {
		for _, t := range p.tokens {
			t.reset()
		}
	}
	s.current = 0
	s.phase = PhaseActive
	s.winner = nil
	s.stalemate = false
	s.turnSkipped = false
	s.skippedPlayer = NoPlayer
	s.selected = nil
}

// LegalActions enumerates what the current player may do. Placements use
// the lowest-id unplaced token. SwitchTurn is always available while the
// game runs and is not listed.
func (s *GameState) LegalActions() []Action {
	if s.IsGameOver() {
		return nil
	}
	p := s.CurrentPlayer()
	var actions []Action
	if next := p.NextUnplaced(); next != nil {
		for _, c := range s.board.AllStartingCells(p.id) {
			if s.board.IsEmpty(c) {
				actions = append(actions, Action{Kind: ActionPlace, Player: p.id, TokenID: next.id, To: cellPtr(c)})
			}
		}
	}
	for _, t := range p.tokens {
		if !t.IsOnBoard() {
			continue
		}
		for _, d := range t.LegalDestinations(s.board) {
			actions = append(actions, Action{
				Kind:    ActionMove,
				Player:  p.id,
				TokenID: t.id,
				From:    cellPtr(t.pos),
				To:      cellPtr(d),
				Escapes: s.board.IsEscapeCell(d, p.id),
			})
		}
		if s.board.IsEscapeCell(t.pos, p.id) {
			actions = append(actions, Action{Kind: ActionEscape, Player: p.id, TokenID: t.id, From: cellPtr(t.pos), Escapes: true})
		}
	}
	return actions
}

// checkTurn covers the checks shared by every token action
func (s *GameState) checkTurn(t *Token) error {
	if s.IsGameOver() {
		return ErrGameOver
	}
	if t == nil || !s.owns(t) {
		return ErrUnknownToken
	}
	if t.owner != s.CurrentPlayer() {
		return ErrNotYourTurn
	}
	return nil
}

func (s *GameState) owns(t *Token) bool {
	for _, p := range s.players {
		if t.owner == p && p.tokens[t.id] == t {
			return true
		}
	}
	return false
}

// put writes occupancy and token position together
func (s *GameState) put(t *Token, c Cell) bool {
	if !s.board.place(t, c) {
		return false
	}
	t.setPosition(c)
	return true
}

// advanceTurn commits victory, passes the turn and skips players who cannot
// act. The scan is bounded by the player count; a full lap without an able
// player is a stalemate.
func (s *GameState) advanceTurn() bool {
	if s.phase == PhaseGameOver {
		return false
	}
	s.turnSkipped = false
	s.skippedPlayer = NoPlayer
	s.selected = nil

	if w := s.CheckVictory(); w != nil {
		s.winner = w
		s.phase = PhaseGameOver
		return true
	}

	s.current = (s.current + 1) % PlayerCount
	for i := 0; i < PlayerCount; i++ {
		p := s.players[s.current]
		if s.canAct(p) {
			return true
		}
		s.turnSkipped = true
		s.skippedPlayer = p.id
		s.current = (s.current + 1) % PlayerCount
	}

	s.stalemate = true
	s.phase = PhaseGameOver
	return true
}

func (s *GameState) canAct(p *Player) bool {
	if p.CanMoveAny(s.board) {
		return true
	}
	return s.rules.PlacementAvoidsSkip && p.CanPlaceAny(s.board)
}

func (s *GameState) String() string {
	return fmt.Sprintf("GameState{size=%d current=%d phase=%s}", s.board.size, s.CurrentPlayer().id, s.phase)
}
