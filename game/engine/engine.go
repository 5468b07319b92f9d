package engine

import (
	"fmt"
	"time"
)

// Engine provides the id-based interface hosts use to drive a game
type Engine interface {
	// Game state management
	State() *GameState
	Snapshot() Snapshot
	Restore(snap Snapshot) error
	Reset() ActionOutcome
	IsGameOver() bool
	Message() string

	// Player actions
	Place(player PlayerID, tokenID int, cell Cell) ActionOutcome
	PlaceNext(player PlayerID, cell Cell) ActionOutcome
	Move(player PlayerID, tokenID int, cell Cell) ActionOutcome
	Escape(player PlayerID, tokenID int) ActionOutcome
	Select(player PlayerID, tokenID int) ActionOutcome
	SwitchTurn() ActionOutcome
	LegalActions() []Action

	// Configuration
	Config() *GameConfig

	// History
	History() History
	RestoreHistory(h History)
	LastAction() *ActionRecord
}

// ActionOutcome reports what one engine call did
type ActionOutcome struct {
	Action        ActionKind `json:"action"`
	Player        PlayerID   `json:"player"`
	TokenID       int        `json:"token_id"`
	Success       bool       `json:"success"`
	Err           error      `json:"-"`
	Reason        string     `json:"reason,omitempty"`
	Escaped       bool       `json:"escaped,omitempty"`
	TurnSkipped   bool       `json:"turn_skipped,omitempty"`
	SkippedPlayer PlayerID   `json:"skipped_player,omitempty"`
	GameOver      bool       `json:"game_over"`
	Winner        PlayerID   `json:"winner,omitempty"`
	Stalemate     bool       `json:"stalemate,omitempty"`
	Message       string     `json:"message,omitempty"`
}

// History keeps every action since the engine was created plus the
// segment since the last reset.
type History struct {
	All          []ActionRecord `json:"all"`
	Current      []ActionRecord `json:"current"`
	Total        int            `json:"total"`
	CurrentCount int            `json:"current_count"`
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state   *GameState
	config  *GameConfig
	history History
	message string
	now     func() time.Time
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	state, err := NewGameState(config.GridSize, config.Rules(), config.PlayerInfo())
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		state:   state,
		config:  config,
		history: History{All: []ActionRecord{}, Current: []ActionRecord{}},
		message: config.Messages.Welcome,
		now:     time.Now,
	}, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("default game config is invalid: %v", err))
	}
	return engine
}

// State returns the underlying game state
func (e *GameEngine) State() *GameState {
	return e.state
}

// Config returns the game configuration
func (e *GameEngine) Config() *GameConfig {
	return e.config
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsGameOver()
}

// Message returns the latest message for players
func (e *GameEngine) Message() string {
	return e.message
}

// Snapshot copies the state together with the config name and message
func (e *GameEngine) Snapshot() Snapshot {
	snap := e.state.Snapshot()
	snap.ConfigName = e.config.Name
	snap.Message = e.message
	snap.Sequence = e.history.Total
	return snap
}

// Restore loads a snapshot (used for persistence loading)
func (e *GameEngine) Restore(snap Snapshot) error {
	if err := e.state.Restore(snap); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	e.message = snap.Message
	return nil
}

// Place puts the given token on a starting cell
func (e *GameEngine) Place(player PlayerID, tokenID int, cell Cell) ActionOutcome {
	rec := ActionRecord{Kind: ActionPlace, Player: player, TokenID: tokenID, To: cellPtr(cell)}
	token, err := e.lookup(player, tokenID)
	if err == nil {
		err = e.state.CheckPlace(token, cell)
	}
	if err == nil && !e.state.PlaceToken(token, cell) {
		err = ErrIllegalDestination
	}
	return e.finish(rec, err)
}

// PlaceNext places the player's lowest-id unplaced token
func (e *GameEngine) PlaceNext(player PlayerID, cell Cell) ActionOutcome {
	p := e.state.Player(player)
	if p == nil {
		return e.finish(ActionRecord{Kind: ActionPlace, Player: player, TokenID: -1, To: cellPtr(cell)}, ErrUnknownToken)
	}
	next := p.NextUnplaced()
	if next == nil {
		err := ErrNoUnplacedToken
		if e.state.IsGameOver() {
			err = ErrGameOver
		}
		return e.finish(ActionRecord{Kind: ActionPlace, Player: player, TokenID: -1, To: cellPtr(cell)}, err)
	}
	return e.Place(player, next.ID(), cell)
}

// Move advances a token to a legal destination
func (e *GameEngine) Move(player PlayerID, tokenID int, cell Cell) ActionOutcome {
	rec := ActionRecord{Kind: ActionMove, Player: player, TokenID: tokenID, To: cellPtr(cell)}
	token, err := e.lookup(player, tokenID)
	if err == nil {
		if pos, ok := token.Position(); ok {
			rec.From = cellPtr(pos)
		}
		err = e.state.CheckMove(token, cell)
	}
	if err == nil && !e.state.MoveToken(token, cell) {
		err = ErrIllegalDestination
	}
	if err == nil {
		rec.Escaped = token.IsEscaped()
	}
	return e.finish(rec, err)
}

// Escape confirms the exit of a token standing on an escape cell
func (e *GameEngine) Escape(player PlayerID, tokenID int) ActionOutcome {
	rec := ActionRecord{Kind: ActionEscape, Player: player, TokenID: tokenID}
	token, err := e.lookup(player, tokenID)
	if err == nil {
		if pos, ok := token.Position(); ok {
			rec.From = cellPtr(pos)
		}
		err = e.state.CheckEscape(token)
	}
	if err == nil && !e.state.EscapeToken(token) {
		err = ErrNotEscapeCell
	}
	if err == nil {
		rec.Escaped = true
	}
	return e.finish(rec, err)
}

// Select records advisory focus on a token
func (e *GameEngine) Select(player PlayerID, tokenID int) ActionOutcome {
	rec := ActionRecord{Kind: ActionSelect, Player: player, TokenID: tokenID}
	token, err := e.lookup(player, tokenID)
	if err == nil {
		err = e.state.CheckSelect(token)
	}
	if err == nil {
		e.state.SelectToken(token)
	}
	return e.finish(rec, err)
}

// SwitchTurn runs the turn advance directly
func (e *GameEngine) SwitchTurn() ActionOutcome {
	rec := ActionRecord{Kind: ActionSwitchTurn, Player: e.state.CurrentPlayer().ID(), TokenID: -1}
	var err error
	if !e.state.SwitchTurn() {
		err = ErrGameOver
	}
	return e.finish(rec, err)
}

// Reset restarts the game. Cumulative history survives; the current
// segment starts over.
func (e *GameEngine) Reset() ActionOutcome {
	e.state.Reset()
	e.message = e.config.Messages.Welcome
	rec := e.record(ActionRecord{Kind: ActionReset, Player: NoPlayer, TokenID: -1, Success: true})
	e.history.Current = []ActionRecord{}
	e.history.CurrentCount = 0
	return ActionOutcome{
		Action:  ActionReset,
		TokenID: rec.TokenID,
		Success: true,
		Message: e.message,
	}
}

// LegalActions lists what the current player may do
func (e *GameEngine) LegalActions() []Action {
	return e.state.LegalActions()
}

// History returns the complete action history
func (e *GameEngine) History() History {
	return e.history
}

// RestoreHistory replaces the history (used for persistence loading)
func (e *GameEngine) RestoreHistory(h History) {
	if h.All == nil {
		h.All = []ActionRecord{}
	}
	if h.Current == nil {
		h.Current = []ActionRecord{}
	}
	h.Total = len(h.All)
	h.CurrentCount = len(h.Current)
	e.history = h
}

// LastAction returns the last recorded action, or nil if none
func (e *GameEngine) LastAction() *ActionRecord {
	if len(e.history.All) == 0 {
		return nil
	}
	return &e.history.All[len(e.history.All)-1]
}

// lookup resolves a seat and roster index into a token
func (e *GameEngine) lookup(player PlayerID, tokenID int) (*Token, error) {
	p := e.state.Player(player)
	if p == nil {
		return nil, ErrUnknownToken
	}
	t := p.Token(tokenID)
	if t == nil {
		return nil, ErrUnknownToken
	}
	return t, nil
}

// finish records the action and builds the outcome and player message
func (e *GameEngine) finish(rec ActionRecord, err error) ActionOutcome {
	rec.Success = err == nil
	rec.Reason = ReasonCode(err)
	if rec.Success && rec.Kind != ActionSelect {
		rec.TurnSkipped = e.state.TurnSkipped()
		rec.SkippedPlayer = e.state.SkippedPlayer()
	}
	rec = e.record(rec)

	out := ActionOutcome{
		Action:        rec.Kind,
		Player:        rec.Player,
		TokenID:       rec.TokenID,
		Success:       rec.Success,
		Err:           err,
		Reason:        rec.Reason,
		Escaped:       rec.Escaped,
		TurnSkipped:   rec.TurnSkipped,
		SkippedPlayer: rec.SkippedPlayer,
		GameOver:      e.state.IsGameOver(),
		Stalemate:     e.state.IsStalemate(),
	}
	if w := e.state.Winner(); w != nil {
		out.Winner = w.ID()
	}
	e.message = e.describe(out)
	out.Message = e.message
	return out
}

func (e *GameEngine) describe(out ActionOutcome) string {
	msgs := e.config.Messages
	switch {
	case !out.Success:
		if msgs.Rejected == "" {
			return out.Err.Error()
		}
		return msgs.Rejected + ": " + out.Err.Error()
	case out.Winner != NoPlayer:
		return fmt.Sprintf(msgs.Victory, int(out.Winner))
	case out.Stalemate:
		return msgs.Stalemate
	case out.TurnSkipped:
		return fmt.Sprintf(msgs.TurnSkipped, int(out.SkippedPlayer))
	case out.Action == ActionSelect:
		return e.message
	default:
		return fmt.Sprintf("Player %d to act", e.state.CurrentPlayer().ID())
	}
}

// record appends rec to both history segments. A rejection that repeats
// the previous rejected attempt, or that arrives after MaxRejectedRun
// consecutive rejections, is folded into the last record instead.
func (e *GameEngine) record(rec ActionRecord) ActionRecord {
	if !rec.Success {
		if last := e.foldTarget(rec); last != nil {
			last.Repeats++
			last.Timestamp = e.now().Unix()
			if n := len(e.history.Current); n > 0 && e.history.Current[n-1].Number == last.Number {
				e.history.Current[n-1] = *last
			}
			return rec
		}
	}

	rec.Number = len(e.history.All) + 1
	rec.Timestamp = e.now().Unix()
	e.history.All = append(e.history.All, rec)
	e.history.Current = append(e.history.Current, rec)
	e.history.Total = len(e.history.All)
	e.history.CurrentCount = len(e.history.Current)
	return rec
}

// foldTarget returns the last record when a rejection should be folded
// into it, or nil when rec needs its own entry
func (e *GameEngine) foldTarget(rec ActionRecord) *ActionRecord {
	n := len(e.history.All)
	if n == 0 || e.history.All[n-1].Success {
		return nil
	}
	last := &e.history.All[n-1]
	if last.sameAttempt(rec) {
		return last
	}

	run := 0
	for i := n - 1; i >= 0 && !e.history.All[i].Success && run < MaxRejectedRun; i-- {
		run++
	}
	if run >= MaxRejectedRun {
		return last
	}
	return nil
}
