package engine

import "fmt"

// TokenSnapshot is the serialisable form of one token
type TokenSnapshot struct {
	ID       int        `json:"id"`
	State    TokenState `json:"state"`
	Position *Cell      `json:"position,omitempty"`
}

// PlayerSnapshot is the serialisable form of one player
type PlayerSnapshot struct {
	ID            PlayerID        `json:"id"`
	Name          string          `json:"name"`
	Color         Color           `json:"color"`
	Tokens        []TokenSnapshot `json:"tokens"`
	UnplacedCount int             `json:"unplaced_count"`
	OnBoardCount  int             `json:"on_board_count"`
	EscapedCount  int             `json:"escaped_count"`
	CanMove       bool            `json:"can_move"`
}

// Snapshot is a complete, self-contained copy of a game. ConfigName,
// Message and Sequence are filled in by GameEngine. Sequence is the number
// of recorded actions and only grows, so of two snapshots of one session
// the higher sequence is the newer. Restore ignores it.
type Snapshot struct {
	ConfigName    string           `json:"config_name,omitempty"`
	GridSize      int              `json:"grid_size"`
	Rules         Rules            `json:"rules"`
	CurrentPlayer PlayerID         `json:"current_player"`
	Phase         Phase            `json:"phase"`
	Winner        PlayerID         `json:"winner,omitempty"`
	Stalemate     bool             `json:"stalemate"`
	TurnSkipped   bool             `json:"turn_skipped"`
	SkippedPlayer PlayerID         `json:"skipped_player,omitempty"`
	SelectedToken *int             `json:"selected_token,omitempty"`
	Players       []PlayerSnapshot `json:"players"`
	Message       string           `json:"message,omitempty"`
	Sequence      int              `json:"sequence"`
}

// Player returns the snapshot of the given seat, or nil
func (s *Snapshot) Player(id PlayerID) *PlayerSnapshot {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Occupancy maps every occupied cell to its owner
func (s *Snapshot) Occupancy() map[Cell]PlayerID {
	occupied := make(map[Cell]PlayerID)
	for _, p := range s.Players {
		for _, t := range p.Tokens {
			if t.State == OnBoard && t.Position != nil {
				occupied[*t.Position] = p.ID
			}
		}
	}
	return occupied
}

// Snapshot copies the state
func (s *GameState) Snapshot() Snapshot {
	snap := Snapshot{
		GridSize:      s.board.size,
		Rules:         s.rules,
		CurrentPlayer: s.CurrentPlayer().id,
		Phase:         s.phase,
		Stalemate:     s.stalemate,
		TurnSkipped:   s.turnSkipped,
		SkippedPlayer: s.skippedPlayer,
		Players:       make([]PlayerSnapshot, 0, PlayerCount),
	}
	if s.winner != nil {
		snap.Winner = s.winner.id
	}
	if s.selected != nil {
		id := s.selected.id
		snap.SelectedToken = &id
	}
	for _, p := range s.players {
		ps := PlayerSnapshot{
			ID:            p.id,
			Name:          p.name,
			Color:         p.color,
			Tokens:        make([]TokenSnapshot, 0, RosterSize),
			UnplacedCount: len(p.Unplaced()),
			OnBoardCount:  len(p.OnBoard()),
			EscapedCount:  len(p.Escaped()),
			CanMove:       p.CanMoveAny(s.board),
		}
		for _, t := range p.tokens {
			ts := TokenSnapshot{ID: t.id, State: t.State()}
			if pos, ok := t.Position(); ok {
				ts.Position = cellPtr(pos)
			}
			ps.Tokens = append(ps.Tokens, ts)
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}

// Restore replaces the state with a snapshot. The snapshot is first applied
// to a scratch game and checked, so a malformed snapshot leaves s untouched.
// Rules and grid size stay as constructed.
func (s *GameState) Restore(snap Snapshot) error {
	if snap.GridSize != s.board.size {
		return fmt.Errorf("snapshot grid size %d does not match board size %d", snap.GridSize, s.board.size)
	}
	scratch, err := NewGameState(s.board.size, s.rules, DefaultPlayers())
	if err != nil {
		return err
	}
	if err := scratch.apply(snap); err != nil {
		return err
	}
	if err := scratch.CheckInvariants(); err != nil {
		return err
	}
	if err := s.apply(snap); err != nil {
		return err
	}
	return nil
}

func (s *GameState) apply(snap Snapshot) error {
	if len(snap.Players) != PlayerCount {
		return fmt.Errorf("snapshot has %d players, want %d", len(snap.Players), PlayerCount)
	}
	s.Reset()

	for _, ps := range snap.Players {
		p := s.Player(ps.ID)
		if p == nil {
			return fmt.Errorf("snapshot has unknown player %d", ps.ID)
		}
		if len(ps.Tokens) != RosterSize {
			return fmt.Errorf("player %d has %d tokens, want %d", ps.ID, len(ps.Tokens), RosterSize)
		}
		p.name = ps.Name
		p.color = ps.Color

		seen := make(map[int]bool, RosterSize)
		for _, ts := range ps.Tokens {
			t := p.Token(ts.ID)
			if t == nil || seen[ts.ID] {
				return fmt.Errorf("player %d has invalid or duplicate token id %d", ps.ID, ts.ID)
			}
			seen[ts.ID] = true

			switch ts.State {
			case Unplaced:
			case OnBoard:
				if ts.Position == nil {
					return fmt.Errorf("player %d token %d is on the board without a position", ps.ID, ts.ID)
				}
				if !s.put(t, *ts.Position) {
					return fmt.Errorf("player %d token %d cannot occupy %s", ps.ID, ts.ID, *ts.Position)
				}
			case Escaped:
				t.markEscaped()
			default:
				return fmt.Errorf("player %d token %d has unknown state %q", ps.ID, ts.ID, ts.State)
			}
		}
	}

	current := s.Player(snap.CurrentPlayer)
	if current == nil {
		return fmt.Errorf("snapshot has unknown current player %d", snap.CurrentPlayer)
	}
	s.current = int(current.id) - 1
	s.phase = snap.Phase
	s.stalemate = snap.Stalemate
	s.turnSkipped = snap.TurnSkipped
	s.skippedPlayer = snap.SkippedPlayer

	if snap.Winner != NoPlayer {
		s.winner = s.Player(snap.Winner)
		if s.winner == nil {
			return fmt.Errorf("snapshot has unknown winner %d", snap.Winner)
		}
	}
	if snap.SelectedToken != nil {
		s.selected = current.Token(*snap.SelectedToken)
		if s.selected == nil {
			return fmt.Errorf("snapshot selects unknown token %d", *snap.SelectedToken)
		}
	}
	return nil
}
