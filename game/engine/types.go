package engine

import (
	"fmt"
	"strconv"
)

const (
	// RosterSize is the number of tokens every player owns
	RosterSize = 7

	// PlayerCount is the number of players in a game
	PlayerCount = 2

	// Validation constants
	MinGridSize     = 5
	MaxGridSize     = 25
	DefaultGridSize = 7
	MaxHistoryPage  = 100

	// MaxRejectedRun caps consecutive rejected history records
	MaxRejectedRun = 16
)

// Cell is one grid intersection. (0,0) is the top-left corner.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String formats the cell as (x,y)
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// PlayerID identifies one of the two players
type PlayerID int

const (
	NoPlayer  PlayerID = 0
	PlayerOne PlayerID = 1
	PlayerTwo PlayerID = 2
)

// Valid reports whether id names one of the two seats
func (id PlayerID) Valid() bool {
	return id == PlayerOne || id == PlayerTwo
}

// Phase is the game lifecycle stage
type Phase int

const (
	PhaseActive Phase = iota
	PhaseGameOver
)

// String returns the wire name of the phase
func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "active":
		*p = PhaseActive
	case "game_over":
		*p = PhaseGameOver
	default:
		return fmt.Errorf("unknown phase %q", string(text))
	}
	return nil
}

// TokenState is the lifecycle stage of a single token
type TokenState string

const (
	Unplaced TokenState = "unplaced"
	OnBoard  TokenState = "on_board"
	Escaped  TokenState = "escaped"
)

// Color is a display colour. It carries no rule meaning.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex formats the colour as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses #rrggbb
func ParseColor(s string) (Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("color %q must look like #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ActionKind names a mutating action
type ActionKind string

const (
	ActionPlace      ActionKind = "place"
	ActionMove       ActionKind = "move"
	ActionEscape     ActionKind = "escape"
	ActionSwitchTurn ActionKind = "switch_turn"
	ActionSelect     ActionKind = "select"
	ActionReset      ActionKind = "reset"
)

// Action describes one action a player may take
type Action struct {
	Kind    ActionKind `json:"kind"`
	Player  PlayerID   `json:"player"`
	TokenID int        `json:"token_id"`
	From    *Cell      `json:"from,omitempty"`
	To      *Cell      `json:"to,omitempty"`
	Escapes bool       `json:"escapes,omitempty"`
}

// ActionRecord is one entry of the action history
type ActionRecord struct {
	Number        int        `json:"number"`
	Kind          ActionKind `json:"kind"`
	Player        PlayerID   `json:"player"`
	TokenID       int        `json:"token_id"`
	From          *Cell      `json:"from,omitempty"`
	To            *Cell      `json:"to,omitempty"`
	Success       bool       `json:"success"`
	Reason        string     `json:"reason,omitempty"`
	Escaped       bool       `json:"escaped,omitempty"`
	TurnSkipped   bool       `json:"turn_skipped,omitempty"`
	SkippedPlayer PlayerID   `json:"skipped_player,omitempty"`
	Timestamp     int64      `json:"timestamp"`
	Repeats       int        `json:"repeats,omitempty"` // rejections folded into this record
}

// sameAttempt reports whether two records describe the same request with
// the same result
func (r ActionRecord) sameAttempt(o ActionRecord) bool {
	return r.Kind == o.Kind && r.Player == o.Player && r.TokenID == o.TokenID &&
		r.Success == o.Success && r.Reason == o.Reason &&
		sameCell(r.From, o.From) && sameCell(r.To, o.To)
}

func sameCell(a, b *Cell) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cellPtr(c Cell) *Cell {
	return &c
}
